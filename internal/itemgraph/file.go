package itemgraph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/semmeta/internal/ir"
)

// File is the YAML layout of an item graph:
//
//	items:
//	  - name: LivingRoom
//	    type: Group
//	    tags: [LivingRoom]
//	  - name: Door1
//	    tags: [Door]
//	    groups: [LivingRoom]
type File struct {
	Items []ir.Item `yaml:"items"`
}

// LoadFile reads a YAML item graph file into a Memory graph.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or declares invalid items.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item graph file: %w", err)
	}

	items, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemory(items...), nil
}

// Decode parses a YAML item graph and validates it.
func Decode(r io.Reader) ([]ir.Item, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateItems(f.Items); err != nil {
		return nil, fmt.Errorf("invalid item graph: %w", err)
	}
	return f.Items, nil
}

// validateItems checks names are present and unique and that only groups
// declare members. References to unknown items are allowed; the engine
// skips them.
func validateItems(items []ir.Item) error {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if item.Name == "" {
			return fmt.Errorf("items[%d]: name is required", i)
		}
		if seen[item.Name] {
			return fmt.Errorf("items[%d]: duplicate item name %q", i, item.Name)
		}
		seen[item.Name] = true

		if len(item.Members) > 0 && !item.IsGroup() {
			return fmt.Errorf("items[%d] (%s): members are only allowed on items of type %s", i, item.Name, ir.ItemTypeGroup)
		}
	}
	return nil
}
