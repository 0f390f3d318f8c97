package errutil

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and, if a Sentry client is configured, reports it together
// with the values attached by goerr.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, slog.Any("error", err))
	Report(ctx, msg, err)
}

// Report sends err to Sentry without logging it. It does nothing when no
// Sentry client is configured.
func Report(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if values := Values(err); len(values) > 0 {
			scope.SetContext("values", sentry.Context(values))
		}
		hub.CaptureException(err)
	})
}

// Values collects goerr values from every goerr.Error in the chain of err,
// including branches joined with errors.Join. Outer values win on key conflicts.
func Values(err error) map[string]any {
	values := map[string]any{}
	collectValues(err, values)
	return values
}

func collectValues(err error, values map[string]any) {
	if err == nil {
		return
	}

	if gerr, ok := err.(*goerr.Error); ok {
		for k, v := range gerr.Values() {
			if _, exists := values[k]; !exists {
				values[k] = v
			}
		}
	}

	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			collectValues(e, values)
		}
	case interface{ Unwrap() error }:
		collectValues(x.Unwrap(), values)
	}
}
