package model

import "encoding/json"

// VehicleRecord is one owned vehicle as stored by the remote backend. CarID
// embeds the owner's local ID as a substring; the rest of the record is
// carried through Extra untouched.
type VehicleRecord struct {
	CarID string

	Extra map[string]json.RawMessage
}

const fieldCarID = "CarID"

// UnmarshalJSON captures CarID and stashes the remainder in Extra.
func (v *VehicleRecord) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if val, ok := raw[fieldCarID]; ok {
		if err := json.Unmarshal(val, &v.CarID); err != nil {
			return err
		}
		delete(raw, fieldCarID)
	}

	v.Extra = raw
	return nil
}

// MarshalJSON merges CarID back into the passthrough remainder.
func (v VehicleRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(v.Extra)+1)
	for k, val := range v.Extra {
		out[k] = val
	}

	id, err := json.Marshal(v.CarID)
	if err != nil {
		return nil, err
	}
	out[fieldCarID] = id

	return json.Marshal(out)
}
