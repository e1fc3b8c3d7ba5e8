package storage

import (
	"encoding/json"
	"fmt"
)

// Migrate copies every key of src into dst and returns how many keys were copied.
// Keys already present in dst are overwritten.
func Migrate(src, dst Store) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}

	for i, key := range keys {
		var raw json.RawMessage
		if err := src.Get(key, &raw); err != nil {
			return i, fmt.Errorf("failed to read key %s from source: %w", key, err)
		}
		if err := dst.Set(key, raw); err != nil {
			return i, fmt.Errorf("failed to write key %s to destination: %w", key, err)
		}
	}
	return len(keys), nil
}
