package artifacts

import (
	"encoding/json"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// CategoryMap is the static label -> category table.
type CategoryMap struct {
	entries map[string]string
}

// NewCategoryMap wraps entries. The map is copied.
func NewCategoryMap(entries map[string]string) *CategoryMap {
	return &CategoryMap{entries: maps.Clone(entries)}
}

// ParseCategoryMap decodes a flat JSON or YAML object. ext selects the
// format (".yaml" and ".yml" use YAML, anything else JSON).
func ParseCategoryMap(data []byte, ext string) (*CategoryMap, error) {
	entries := make(map[string]string)
	var err error
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding category map: %w", err)
	}
	return &CategoryMap{entries: entries}, nil
}

// Lookup returns the category of label.
func (c *CategoryMap) Lookup(label string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.entries[label]
	return v, ok
}

// All returns a copy of the table.
func (c *CategoryMap) All() map[string]string {
	if c == nil {
		return map[string]string{}
	}
	return maps.Clone(c.entries)
}

// Len is the number of entries.
func (c *CategoryMap) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
