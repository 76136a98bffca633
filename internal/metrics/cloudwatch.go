package metrics

import (
	"context"
	"log"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/session"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "WordExpander/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
	}, nil
}

// Enabled reports whether metrics are actually sent
func (m *Client) Enabled() bool {
	return m.enabled
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := []types.Dimension{
			{
				Name:  aws.String("Endpoint"),
				Value: aws.String(endpoint),
			},
			m.environmentDimension(),
		}

		m.putMetrics(metricName, dimensions, []types.MetricDatum{
			datum(metricName, 1, types.StandardUnitCount),
			datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
		})
	}()
}

// RecordSession records the outcome, duration and token usage of one generation
func (m *Client) RecordSession(_ context.Context, summary session.Summary) {
	if !m.enabled {
		return
	}

	go func() {
		dimensions := []types.Dimension{
			{
				Name:  aws.String("Provider"),
				Value: aws.String(summary.Provider),
			},
			{
				Name:  aws.String("Status"),
				Value: aws.String(summary.Status.String()),
			},
			m.environmentDimension(),
		}

		data := []types.MetricDatum{
			datum("Generations", 1, types.StandardUnitCount),
			datum("GenerationDuration", float64(summary.Duration.Milliseconds()), types.StandardUnitMilliseconds),
			datum("GenerationFragments", float64(summary.Fragments), types.StandardUnitCount),
			datum("GenerationCharacters", float64(len([]rune(summary.Text))), types.StandardUnitCount),
		}
		if summary.Usage.TotalTokens > 0 {
			data = append(data,
				datum("Tokens/Input", float64(summary.Usage.InputTokens), types.StandardUnitCount),
				datum("Tokens/Output", float64(summary.Usage.OutputTokens), types.StandardUnitCount),
				datum("Tokens/Total", float64(summary.Usage.TotalTokens), types.StandardUnitCount),
			)
		}

		m.putMetrics("Generations", dimensions, data)
	}()
}

func (m *Client) environmentDimension() types.Dimension {
	return types.Dimension{
		Name:  aws.String("Environment"),
		Value: aws.String(m.environment),
	}
}

func datum(name string, value float64, unit types.StandardUnit) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
	}
}

// putMetrics sends a batch of metrics sharing the same dimensions to CloudWatch
func (m *Client) putMetrics(label string, dimensions []types.Dimension, data []types.MetricDatum) {
	if !m.enabled || m.client == nil {
		return
	}

	now := time.Now()
	for i := range data {
		data[i].Dimensions = dimensions
		data[i].Timestamp = aws.Time(now)
	}

	// Create context with timeout for CloudWatch call
	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	if err != nil {
		log.Printf("Failed to record %s metrics: %v", label, err)
	}
}
