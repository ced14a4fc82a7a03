// Package sanitize strips persistence-only fields from records before they
// are resubmitted to the remote backend. The backend's own store decorates
// fetched records with identity, timestamp and versioning fields that it
// rejects on save.
package sanitize

import "encoding/json"

// denylist is the exact set of field names stripped from records. Matching
// is on exact key name only; domain fields with similar names (CarID,
// localID, ...) are never touched.
var denylist = map[string]struct{}{
	"_id":       {},
	"id":        {},
	"objectId":  {},
	"createdAt": {},
	"updatedAt": {},
	"deletedAt": {},
	"__v":       {},
}

// Apply removes denylisted keys recursively through nested maps and lists.
// It returns v (mutated in place for maps). Applying it twice is a no-op.
func Apply(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, nested := range val {
			if _, deny := denylist[k]; deny {
				delete(val, k)
				continue
			}
			val[k] = Apply(nested)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = Apply(item)
		}
		return val
	default:
		return v
	}
}

// Record decodes a serialized record, sanitizes it and re-encodes it. A
// record that cannot be decoded is returned unchanged.
func Record(raw json.RawMessage) json.RawMessage {
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return raw
	}

	out, err := json.Marshal(Apply(tree))
	if err != nil {
		return raw
	}
	return out
}
