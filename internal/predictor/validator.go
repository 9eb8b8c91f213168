// Package predictor holds the input validator and the dispatcher that turns a
// soil reading into an outcome by running the trained pipeline.
package predictor

import (
	"fmt"
	"strconv"

	"croppredict/internal/types"
)

// nutrientFloor is the smallest non-zero nutrient value accepted without a
// warning. Zero is reserved for "not filled in" and handled by IsIncomplete.
const nutrientFloor = 10.0

// Range is an inclusive plausibility interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// PlausibleRanges are the agronomic soft ranges. Values outside them are not
// rejected at the boundary but produce a warning and block prediction.
var PlausibleRanges = struct {
	NutrientFloor float64
	Temperature   Range
	Humidity      Range
	PH            Range
}{
	NutrientFloor: nutrientFloor,
	Temperature:   Range{Min: 10, Max: 45},
	Humidity:      Range{Min: 20, Max: 100},
	PH:            Range{Min: 3.5, Max: 9},
}

// Validate returns one warning per implausible field, in the order N, P, K,
// temperature, humidity, pH. Every check runs; an empty result means the
// reading may be dispatched.
func Validate(r types.SoilReading) []string {
	var warnings []string

	nutrients := []struct {
		name  string
		value float64
	}{
		{"Nitrogen (N)", r.Nitrogen},
		{"Phosphorus (P)", r.Phosphorus},
		{"Potassium (K)", r.Potassium},
	}
	for _, n := range nutrients {
		if n.value < nutrientFloor && n.value != 0 {
			warnings = append(warnings, fmt.Sprintf(
				"%s value %s is unrealistically low (expected at least %s)",
				n.name, num(n.value), num(nutrientFloor)))
		}
	}

	if t := PlausibleRanges.Temperature; !t.Contains(r.Temperature) {
		warnings = append(warnings, fmt.Sprintf(
			"Temperature %s°C is outside the plausible range for farming (%s-%s°C)",
			num(r.Temperature), num(t.Min), num(t.Max)))
	}
	if h := PlausibleRanges.Humidity; !h.Contains(r.Humidity) {
		warnings = append(warnings, fmt.Sprintf(
			"Humidity %s%% is outside the plausible range (%s-%s%%)",
			num(r.Humidity), num(h.Min), num(h.Max)))
	}
	if p := PlausibleRanges.PH; !p.Contains(r.PH) {
		warnings = append(warnings, fmt.Sprintf(
			"Soil pH %s is outside the plausible range (%s-%s)",
			num(r.PH), num(p.Min), num(p.Max)))
	}

	return warnings
}

// IsIncomplete reports whether any nutrient field still holds the zero
// sentinel meaning "not filled in".
func IsIncomplete(r types.SoilReading) bool {
	return r.Nitrogen == 0 || r.Phosphorus == 0 || r.Potassium == 0
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
