package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding a *newrelic.Application.
type NewRelicContextKey struct{}

// WithApplication returns a copy of ctx carrying app. A nil app leaves ctx
// untouched, which disables all recording.
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

// ApplicationFromContext returns the application stored by WithApplication.
func ApplicationFromContext(ctx context.Context) (*newrelic.Application, bool) {
	app, ok := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return app, ok && app != nil
}

// StartTransaction starts a background transaction named name if ctx carries
// an application and no transaction is already in flight. The returned
// function ends it.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	if newrelic.FromContext(ctx) != nil {
		return ctx, func() {}
	}

	app, ok := ApplicationFromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
