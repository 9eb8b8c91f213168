package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"croppredict/internal/core"
	"croppredict/internal/types"
)

// readingFlags binds the six readings to flags, starting from the form
// defaults.
type readingFlags struct {
	reading types.SoilReading
}

func (f *readingFlags) register(fs *pflag.FlagSet) {
	d := types.DefaultReading()
	fs.Float64VarP(&f.reading.Nitrogen, "nitrogen", "n", d.Nitrogen, "Nitrogen (N), 0-200; 0 means not filled in")
	fs.Float64VarP(&f.reading.Phosphorus, "phosphorus", "p", d.Phosphorus, "Phosphorus (P), 0-200; 0 means not filled in")
	fs.Float64VarP(&f.reading.Potassium, "potassium", "k", d.Potassium, "Potassium (K), 0-200; 0 means not filled in")
	fs.Float64VarP(&f.reading.Temperature, "temperature", "t", d.Temperature, "Temperature in °C, -10 to 60")
	fs.Float64Var(&f.reading.Humidity, "humidity", d.Humidity, "Relative humidity in %, 0-100")
	fs.Float64Var(&f.reading.PH, "ph", d.PH, "Soil pH, 0-14")
}

// checkBounds rejects readings outside the hard input bounds.
func checkBounds(v *core.Validator, r types.SoilReading) error {
	err := v.ValidateStruct(r)
	if err == nil {
		return nil
	}
	fields := core.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, "--"+name+" "+fields[name])
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}
