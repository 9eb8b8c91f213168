package types

// Hard input bounds. A reading outside these never reaches the dispatcher:
// the form, the JSON API and the CLI reject it at the boundary.
const (
	MinNutrient    = 0.0
	MaxNutrient    = 200.0
	MinTemperature = -10.0
	MaxTemperature = 60.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
	MinPH          = 0.0
	MaxPH          = 14.0
)

// Form defaults shown on a fresh prediction form.
const (
	DefaultTemperature = 25.0
	DefaultHumidity    = 60.0
	DefaultPH          = 6.5
)

// FeatureCount is the width of the feature vector handed to the scaler.
const FeatureCount = 6

// FeatureNames lists the feature vector columns in order.
var FeatureNames = [FeatureCount]string{"N", "P", "K", "temperature", "humidity", "ph"}

// SoilReading is the six-field soil and climate description of a single
// submission. The validate tags encode the hard input bounds.
type SoilReading struct {
	Nitrogen    float64 `json:"nitrogen" yaml:"nitrogen" validate:"gte=0,lte=200"`
	Phosphorus  float64 `json:"phosphorus" yaml:"phosphorus" validate:"gte=0,lte=200"`
	Potassium   float64 `json:"potassium" yaml:"potassium" validate:"gte=0,lte=200"`
	Temperature float64 `json:"temperature" yaml:"temperature" validate:"gte=-10,lte=60"`
	Humidity    float64 `json:"humidity" yaml:"humidity" validate:"gte=0,lte=100"`
	PH          float64 `json:"ph" yaml:"ph" validate:"gte=0,lte=14"`
}

// DefaultReading returns the values a fresh form starts with. N, P and K
// start at zero, which the dispatcher reads as "not filled in".
func DefaultReading() SoilReading {
	return SoilReading{
		Temperature: DefaultTemperature,
		Humidity:    DefaultHumidity,
		PH:          DefaultPH,
	}
}

// Features returns the reading as the model's feature vector:
// [N, P, K, temperature, humidity, pH].
func (r SoilReading) Features() []float64 {
	return []float64{
		r.Nitrogen,
		r.Phosphorus,
		r.Potassium,
		r.Temperature,
		r.Humidity,
		r.PH,
	}
}
