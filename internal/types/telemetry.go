package types

// Metric names shared by the CloudWatch and Prometheus collectors.
const (
	MetricAPILatency      = "APILatency"
	MetricAPIRequestCount = "APIRequestCount"
	MetricOutcome         = "PredictionOutcome"

	DimMethod   = "Method"
	DimEndpoint = "Endpoint"
	DimStatus   = "Status"
	DimOutcome  = "Outcome"

	MetricNamespace = "CropPredict"
)
