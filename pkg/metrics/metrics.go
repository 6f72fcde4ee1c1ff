package metrics

import (
	"context"
	"time"
)

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if app, ok := applicationFromContext(ctx); ok {
		app.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in fractional milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if app, ok := applicationFromContext(ctx); ok {
		app.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}

// RecordEvent records a new event with a name and set of key-value pairs.
// Nil values are dropped.
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	app, ok := applicationFromContext(ctx)
	if !ok {
		return
	}

	attributes := make(map[string]interface{}, len(kvPairs))
	for key, value := range kvPairs {
		if value != nil {
			attributes[key] = value
		}
	}
	app.RecordCustomEvent(eventName, attributes)
}
