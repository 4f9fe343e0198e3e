package persistence

import (
	"encoding/json"
	"fmt"
)

// Wizard data is persisted as JSON. Unlike gob, JSON round-trips nil
// values, which the invalidation cascade stores deliberately (an
// invalidated field is null, not absent).
func encodeData(data map[string]any) ([]byte, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode wizard data: %w", err)
	}
	return blob, nil
}

func decodeData(blob []byte) (map[string]any, error) {
	if len(blob) == 0 {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("decode wizard data: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// mergeData shallow-merges an update into previously stored data: new
// keys overwrite, untouched keys survive.
func mergeData(stored, update map[string]any) map[string]any {
	merged := make(map[string]any, len(stored)+len(update))
	for key, value := range stored {
		merged[key] = value
	}
	for key, value := range update {
		merged[key] = value
	}
	return merged
}
