package repositories

import "encoding/json"

// marshalMetadata serializes a metadata map for a JSONB column. Absent
// metadata is returned as an untyped nil so the driver writes SQL NULL
// instead of an empty byte slice.
func marshalMetadata(m map[string]interface{}) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}
