package renderer

import (
	"context"
	"time"
)

type timeoutKey struct{}

// WithTimeout records the render timeout in ctx without starting it. Engines
// start the clock with Begin once the render is admitted, so time spent
// queued behind other renders is not counted.
func WithTimeout(ctx context.Context, timeout time.Duration) context.Context {
	return context.WithValue(ctx, timeoutKey{}, timeout)
}

// Begin starts the render timeout recorded in ctx, if any. The returned
// context carries no timeout of its own, nested engines do not restart it.
func Begin(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout, _ := ctx.Value(timeoutKey{}).(time.Duration)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(WithTimeout(ctx, 0), timeout)
}
