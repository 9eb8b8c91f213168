// Package render turns dispatch outcomes into display lines shared by the
// HTML pages and the CLI.
package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"croppredict/internal/types"
)

// Level is the severity a view is shown with.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Fixed messages.
const (
	MsgMissingFields    = "Please fill in all soil parameters."
	MsgModelUnavailable = "Model is not available. Please check the model files."
	MsgRankedHeading    = "Top 3 crop recommendations"
	MsgLoadFailureHint  = "Prediction will not run. Make sure the model, scaler, label encoder and category files are present and valid."
	MsgPipelineFailure  = "Something went wrong while predicting. Please try again."
)

// View is a rendered outcome. Lines is the flat text form; Prediction is
// set for successful outcomes so templates can lay out the result panel.
type View struct {
	Level      Level
	Lines      []string
	Prediction *PredictionView
}

// PredictionView is the display form of a successful prediction.
type PredictionView struct {
	Crop     string
	Category string
	Ranked   []string
}

// Outcome renders o.
func Outcome(o types.Outcome) View {
	switch o.Kind {
	case types.OutcomeMissingFields:
		return View{Level: LevelWarning, Lines: []string{MsgMissingFields}}
	case types.OutcomeValidationWarnings:
		return View{Level: LevelWarning, Lines: append([]string(nil), o.Warnings...)}
	case types.OutcomeModelUnavailable:
		return View{Level: LevelError, Lines: []string{MsgModelUnavailable}}
	case types.OutcomePrediction:
		if o.Prediction == nil {
			return View{Level: LevelError, Lines: []string{MsgModelUnavailable}}
		}
		return prediction(*o.Prediction)
	default:
		return View{Level: LevelError, Lines: []string{fmt.Sprintf("unknown outcome %q", o.Kind)}}
	}
}

func prediction(p types.PredictionOutcome) View {
	pv := &PredictionView{
		Crop:     Capitalize(p.Label),
		Category: p.Category,
	}
	lines := []string{
		"Suitable crop: " + pv.Crop,
		"Category: " + pv.Category,
	}
	if len(p.Ranked) > 0 {
		lines = append(lines, MsgRankedHeading)
		for _, r := range p.Ranked {
			entry := RankedLine(r)
			pv.Ranked = append(pv.Ranked, entry)
			lines = append(lines, entry)
		}
	}
	return View{Level: LevelSuccess, Lines: lines, Prediction: pv}
}

// RankedLine formats one ranking entry as "Label (xx.xx%)".
func RankedLine(r types.RankedLabel) string {
	return fmt.Sprintf("%s (%s)", Capitalize(r.Label), Percent(r.Probability))
}

// Percent formats a probability in [0,1] as a percentage with two decimals.
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Capitalize upper-cases the first character and lower-cases the rest, so
// "kidneybeans" and "KIDNEYBEANS" both become "Kidneybeans".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}

// LoadFailure renders the banner shown while artifacts are unavailable.
func LoadFailure(err error) View {
	lines := []string{"Failed to load the model or its supporting files."}
	if err != nil {
		lines[0] = "Failed to load the model or its supporting files: " + err.Error()
	}
	return View{Level: LevelError, Lines: append(lines, MsgLoadFailureHint)}
}

// PipelineFailure renders a submission whose pipeline returned an error.
// The cause stays in the logs.
func PipelineFailure() View {
	return View{Level: LevelError, Lines: []string{MsgPipelineFailure}}
}
