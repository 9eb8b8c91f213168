package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"croppredict/internal/render"
)

// Output formats.
const (
	outputHuman = "human"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func checkOutputFormat(format string) error {
	switch format {
	case outputHuman, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want human, json or yaml)", format)
	}
}

// writeStructured prints v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

func levelColor(l render.Level) *color.Color {
	switch l {
	case render.LevelSuccess:
		return color.New(color.FgGreen, color.Bold)
	case render.LevelWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// writeView prints a rendered outcome for a terminal.
func writeView(w io.Writer, v render.View) {
	c := levelColor(v.Level)

	if p := v.Prediction; p != nil {
		c.Fprintf(w, "Suitable crop: %s\n", p.Crop)
		fmt.Fprintf(w, "Category: %s\n", p.Category)
		if len(p.Ranked) > 0 {
			fmt.Fprintln(w)
			color.New(color.FgCyan, color.Bold).Fprintln(w, render.MsgRankedHeading)
			for _, line := range p.Ranked {
				fmt.Fprintf(w, "  - %s\n", line)
			}
		}
		return
	}

	for _, line := range v.Lines {
		c.Fprintln(w, line)
	}
}
