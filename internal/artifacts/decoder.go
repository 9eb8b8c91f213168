package artifacts

import (
	"encoding/json"
	"fmt"
)

// LabelDecoder maps class indices back to crop labels.
type LabelDecoder struct {
	Classes []string `json:"classes"`
}

// ParseLabelDecoder decodes a {"classes": [...]} document.
func ParseLabelDecoder(data []byte) (*LabelDecoder, error) {
	var d LabelDecoder
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding label encoder: %w", err)
	}
	if len(d.Classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	seen := make(map[string]struct{}, len(d.Classes))
	for _, c := range d.Classes {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("label encoder lists %q twice", c)
		}
		seen[c] = struct{}{}
	}
	return &d, nil
}

// Decode returns the label for index.
func (d *LabelDecoder) Decode(index int) (string, error) {
	if index < 0 || index >= len(d.Classes) {
		return "", fmt.Errorf("class index %d outside [0, %d)", index, len(d.Classes))
	}
	return d.Classes[index], nil
}

// NumClasses is the number of known labels.
func (d *LabelDecoder) NumClasses() int {
	return len(d.Classes)
}
