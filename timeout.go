package await

import (
	"context"
	"time"
)

// Sleep pauses the calling goroutine until d elapses or ctx is done,
// whichever comes first. It returns nil after a full sleep, and
// context.Cause(ctx) after an interrupted one.
func Sleep(ctx context.Context, d time.Duration) error {
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// WithTimeout returns a [Func] that runs f under a context that is canceled
// once d has elapsed. A timed-out f observes context.DeadlineExceeded and is
// expected to return promptly with it.
//
// Cancellation is cooperative: a Func that ignores its context is not
// abandoned at the deadline.
func WithTimeout[T any](d time.Duration, f Func[T]) Func[T] {
	return func(ctx context.Context) (T, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return f(ctx)
	}
}
