package actor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// KeyValueStore is the default key-value store: one pretty-printed JSON file
// per key.
type KeyValueStore struct {
	dir string
}

func OpenKeyValueStore(storageDir string) (*KeyValueStore, error) {
	dir := filepath.Join(storageDir, "key_value_stores", "default")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating key-value store directory %q: %w", dir, err)
	}
	return &KeyValueStore{dir: dir}, nil
}

func (s *KeyValueStore) SetValue(key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling value for key %q: %w", key, err)
	}

	path := filepath.Join(s.dir, key+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing key-value record %q: %w", path, err)
	}
	return nil
}

// GetValue loads a key into out. A missing key returns os.ErrNotExist.
func (s *KeyValueStore) GetValue(key string, out any) error {
	path := filepath.Join(s.dir, key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing key-value record %q: %w", path, err)
	}
	return nil
}
