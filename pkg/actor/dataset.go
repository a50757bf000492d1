package actor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// Dataset is the append-only default dataset. Each record becomes one
// zero-padded JSON file, numbering continuing from whatever is already there
// so re-runs against the same storage never clobber earlier records.
type Dataset struct {
	dir  string
	next int
}

var datasetItemRe = regexp.MustCompile(`^(\d{9})\.json$`)

func OpenDataset(storageDir string) (*Dataset, error) {
	dir := filepath.Join(storageDir, "datasets", "default")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating dataset directory %q: %w", dir, err)
	}

	next := 1
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing dataset directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		match := datasetItemRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}

	return &Dataset{dir: dir, next: next}, nil
}

// Push appends every record to the dataset.
func (d *Dataset) Push(items []map[string]any) error {
	for _, item := range items {
		data, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling dataset record: %w", err)
		}

		path := filepath.Join(d.dir, fmt.Sprintf("%09d.json", d.next))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing dataset record %q: %w", path, err)
		}
		d.next++
	}
	return nil
}

// Size returns how many records this handle has seen or found.
func (d *Dataset) Size() int {
	return d.next - 1
}
