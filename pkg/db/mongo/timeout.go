package mongo

import (
	"context"
	"time"
)

// WithTimeout bounds ctx by timeout unless it is a session context, which
// cannot be wrapped without detaching it from its transaction. An earlier
// deadline on ctx is kept.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if InTransaction(ctx) {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
