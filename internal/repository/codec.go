package repository

import (
	"encoding/json"
	"fmt"
)

// encodeBlob serializes a whole collection as one JSON array. Timestamps
// round-trip through time.Time's RFC 3339 encoding; a nil lastChecked stays
// null rather than becoming the zero time.
func encodeBlob(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return data, nil
}

// decodeBlob deserializes a collection blob into target. An empty or absent
// blob is not an error; callers map it to an empty collection.
func decodeBlob(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode collection: %w", err)
	}
	return nil
}
