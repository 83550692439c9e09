package metrics

import (
	"context"
)

// RecordEvent records a new event with a name and set of key-value pairs
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if app, ok := ApplicationFromContext(ctx); ok {
		app.RecordCustomEvent(eventName, kvPairs)
	}
}
