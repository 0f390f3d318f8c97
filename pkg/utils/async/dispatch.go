package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/utils/errutil"
)

// Dispatch runs handler in a new goroutine. The handler receives a background
// context that keeps the logger and Sentry hub of ctx but not its
// cancellation, so work outlives the request that triggered it. Panics are
// recovered and logged with their stack; returned errors go to errutil.Handle.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", stack)
				errutil.Report(newCtx, "panic in async handler",
					goerr.New(fmt.Sprintf("panic: %v", r), goerr.V("stack", stack)))
			}
		}()

		if err := handler(newCtx); err != nil {
			errutil.Handle(newCtx, "error in async handler", err)
		}
	}()
}

func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := ctxlog.With(context.Background(), ctxlog.From(ctx))
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		newCtx = sentry.SetHubOnContext(newCtx, hub.Clone())
	}
	return newCtx
}
