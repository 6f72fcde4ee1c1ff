package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKeyType struct{}

// NewRelicContextKey is the context key holding the *newrelic.Application that
// custom metrics and events are reported to.
var NewRelicContextKey = newRelicContextKeyType{}

// NewContext returns a context that reports metrics and events to app
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	return context.WithValue(ctx, NewRelicContextKey, app)
}

// StartTransaction returns a context reporting to app with a new transaction
// attached, so method traces below it are recorded. The returned func ends the
// transaction.
func StartTransaction(ctx context.Context, app *newrelic.Application, name string) (context.Context, func()) {
	txn := app.StartTransaction(name)
	ctx = newrelic.NewContext(NewContext(ctx, app), txn)
	return ctx, txn.End
}

func applicationFromContext(ctx context.Context) (*newrelic.Application, bool) {
	app, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return app, ok && app != nil
}
