package model

import "encoding/json"

// LocalID is the game's player-unique identifier string. The backend stores
// it in two representations: canonical (possibly carrying color codes) and a
// cleaned form with the color codes stripped.
type LocalID = string

// PlayerRecord is one account's game state as stored by the remote backend.
// Known fields are typed; everything else is carried through Extra untouched
// so unknown backend fields survive a fetch/save round trip byte-for-byte.
type PlayerRecord struct {
	LocalID LocalID
	Name    string
	Money   json.Number

	Extra map[string]json.RawMessage
}

// Field names the remote backend uses for the known fields.
const (
	fieldLocalID = "localID"
	fieldName    = "Name"
	fieldMoney   = "money"
)

// UnmarshalJSON captures the known fields and stashes the remainder in Extra.
func (p *PlayerRecord) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw[fieldLocalID]; ok {
		if err := json.Unmarshal(v, &p.LocalID); err != nil {
			return err
		}
		delete(raw, fieldLocalID)
	}
	if v, ok := raw[fieldName]; ok {
		if err := json.Unmarshal(v, &p.Name); err != nil {
			return err
		}
		delete(raw, fieldName)
	}
	if v, ok := raw[fieldMoney]; ok {
		if err := json.Unmarshal(v, &p.Money); err != nil {
			return err
		}
		delete(raw, fieldMoney)
	}

	p.Extra = raw
	return nil
}

// MarshalJSON merges the known fields back into the passthrough remainder.
func (p PlayerRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}

	id, err := json.Marshal(p.LocalID)
	if err != nil {
		return nil, err
	}
	out[fieldLocalID] = id

	name, err := json.Marshal(p.Name)
	if err != nil {
		return nil, err
	}
	out[fieldName] = name

	money := p.Money
	if money == "" {
		money = "0"
	}
	m, err := json.Marshal(money)
	if err != nil {
		return nil, err
	}
	out[fieldMoney] = m

	return json.Marshal(out)
}

// Clone returns a deep copy of the record
func (p *PlayerRecord) Clone() *PlayerRecord {
	out := &PlayerRecord{
		LocalID: p.LocalID,
		Name:    p.Name,
		Money:   p.Money,
		Extra:   make(map[string]json.RawMessage, len(p.Extra)),
	}
	for k, v := range p.Extra {
		out.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
