package types

// UnknownCategory is reported when a predicted label has no entry in the
// category map.
const UnknownCategory = "unknown"

// MaxRanked is the number of entries in a probability ranking.
const MaxRanked = 3

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind string

const (
	OutcomeMissingFields      OutcomeKind = "missing_fields"
	OutcomeValidationWarnings OutcomeKind = "validation_warnings"
	OutcomeModelUnavailable   OutcomeKind = "model_unavailable"
	OutcomePrediction         OutcomeKind = "prediction"

	// OutcomePipelineFailure labels metrics for submissions whose pipeline
	// returned an error. It never appears in an Outcome.
	OutcomePipelineFailure OutcomeKind = "pipeline_failure"
)

// RankedLabel is one entry of the top-N probability ranking.
type RankedLabel struct {
	Label       string  `json:"label" yaml:"label"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// PredictionOutcome is the result of a successful pipeline run.
// Ranked is nil when the classifier does not expose probabilities.
type PredictionOutcome struct {
	Label    string        `json:"label" yaml:"label"`
	Category string        `json:"category" yaml:"category"`
	Ranked   []RankedLabel `json:"ranked,omitempty" yaml:"ranked,omitempty"`
}

// Outcome is the tagged result of a dispatch. Exactly one of the variant
// payloads is meaningful for a given Kind: Warnings for
// OutcomeValidationWarnings, Prediction for OutcomePrediction.
type Outcome struct {
	Kind       OutcomeKind        `json:"status" yaml:"status"`
	Warnings   []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Prediction *PredictionOutcome `json:"prediction,omitempty" yaml:"prediction,omitempty"`
}

// MissingFields builds the incomplete-form outcome.
func MissingFields() Outcome {
	return Outcome{Kind: OutcomeMissingFields}
}

// ValidationWarnings builds the plausibility-warning outcome.
func ValidationWarnings(warnings []string) Outcome {
	return Outcome{Kind: OutcomeValidationWarnings, Warnings: warnings}
}

// ModelUnavailable builds the outcome used when artifacts failed to load.
func ModelUnavailable() Outcome {
	return Outcome{Kind: OutcomeModelUnavailable}
}

// Predicted wraps a pipeline result.
func Predicted(p PredictionOutcome) Outcome {
	return Outcome{Kind: OutcomePrediction, Prediction: &p}
}
