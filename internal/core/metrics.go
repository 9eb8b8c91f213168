package core

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"croppredict/internal/types"
)

// cloudWatchBatchSize is the PutMetricData datum limit we flush at.
const cloudWatchBatchSize = 20

// cloudWatchPutTimeout bounds a single PutMetricData call.
const cloudWatchPutTimeout = 5 * time.Second

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var (
	_ MetricsCollector = (*CloudWatchMetrics)(nil)
	_ MetricsCollector = (*PrometheusMetrics)(nil)
	_ MetricsCollector = NoopMetrics{}
)

// CloudWatchMetrics buffers data points and publishes them in batches.
// Close flushes whatever is left.
//
// Metrics emitted:
//   - APILatency: Dims {Method, Endpoint}, milliseconds
//   - APIRequestCount: Dims {Method, Endpoint, Status}
//   - PredictionOutcome: Dims {Outcome}
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger

	mu      sync.Mutex
	pending []cwtypes.MetricDatum
}

// NewCloudWatchMetrics publishes into namespace, falling back to
// types.MetricNamespace when it is empty.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordRequest buffers the latency and count data points of one request.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	now := time.Now()
	m.add(
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
			Dimensions: []cwtypes.Dimension{
				{Name: aws.String(types.DimMethod), Value: aws.String(method)},
				{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
			},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  aws.Time(now),
			Dimensions: []cwtypes.Dimension{
				{Name: aws.String(types.DimMethod), Value: aws.String(method)},
				{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
				{Name: aws.String(types.DimStatus), Value: aws.String(status)},
			},
		},
	)
}

// RecordOutcome buffers one prediction outcome.
func (m *CloudWatchMetrics) RecordOutcome(kind types.OutcomeKind, duration time.Duration) {
	m.add(cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricOutcome),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimOutcome), Value: aws.String(string(kind))},
		},
	})
}

// Flush publishes all buffered data points.
func (m *CloudWatchMetrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for len(batch) > 0 {
		n := min(len(batch), cloudWatchBatchSize)
		if err := m.put(ctx, batch[:n]); err != nil {
			return err
		}
		batch = batch[n:]
	}
	return nil
}

// Close flushes remaining data points.
func (m *CloudWatchMetrics) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), cloudWatchPutTimeout)
	defer cancel()
	return m.Flush(ctx)
}

func (m *CloudWatchMetrics) add(data ...cwtypes.MetricDatum) {
	m.mu.Lock()
	m.pending = append(m.pending, data...)
	if len(m.pending) < cloudWatchBatchSize {
		m.mu.Unlock()
		return
	}
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), cloudWatchPutTimeout)
	defer cancel()
	for len(batch) > 0 {
		n := min(len(batch), cloudWatchBatchSize)
		if err := m.put(ctx, batch[:n]); err != nil {
			m.logger.Error("failed to publish metrics", "error", err, "datapoints", n)
		}
		batch = batch[n:]
	}
}

func (m *CloudWatchMetrics) put(ctx context.Context, data []cwtypes.MetricDatum) error {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	return err
}

// PrometheusMetrics records into a private registry exposed by Handler.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	pipeline *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the service metrics plus the Go runtime and
// process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "croppredict",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "croppredict",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "endpoint", "status"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "croppredict",
			Name:      "prediction_outcomes_total",
			Help:      "Prediction submissions by outcome.",
		}, []string{"outcome"}),
		pipeline: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "croppredict",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent dispatching a submission.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.latency,
		m.requests,
		m.outcomes,
		m.pipeline,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.latency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.requests.WithLabelValues(method, endpoint, status).Inc()
}

func (m *PrometheusMetrics) RecordOutcome(kind types.OutcomeKind, duration time.Duration) {
	m.outcomes.WithLabelValues(string(kind)).Inc()
	m.pipeline.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// Registry exposes the underlying registry for tests.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordRequest(string, string, string, time.Duration) {}
func (NoopMetrics) RecordOutcome(types.OutcomeKind, time.Duration)      {}
