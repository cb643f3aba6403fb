package bedrock

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type bedrockMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	metricsOnce  sync.Once
	metricsStore *bedrockMetrics
)

func getBedrockMetrics() *bedrockMetrics {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/soterohealth/medscribe/bedrock")

		requestCount, err := meter.Int64Counter(
			"ai.bedrock.request.count",
			metric.WithDescription("Number of Bedrock generation requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.bedrock.request.duration",
			metric.WithDescription("Bedrock request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.bedrock.request.errors",
			metric.WithDescription("Number of Bedrock request errors"),
		)
		if err != nil {
			return
		}
		rateLimitWait, err := meter.Float64Histogram(
			"ai.bedrock.rate_limit.wait",
			metric.WithDescription("Time spent waiting for the Bedrock rate limiter in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}

		metricsStore = &bedrockMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
			rateLimitWait:   rateLimitWait,
		}
	})
	return metricsStore
}

func recordBedrockMetric(ctx context.Context, model string, duration time.Duration, err error) {
	m := getBedrockMetrics()
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "bedrock"),
		attribute.String("ai.model", model),
	}

	m.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordBedrockRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	m := getBedrockMetrics()
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "bedrock"),
		attribute.String("ai.model", model),
	}
	m.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
