package await

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// WithRetry returns a [Func] that calls f up to maxTries times, with
// exponentially growing pauses in between, until a call succeeds. The first
// pause lasts about initial; with a non-positive initial, a default is used.
//
// Retrying stops early when ctx is done, or when f fails with an error
// wrapped by [backoff.Permanent].
func WithRetry[T any](maxTries uint, initial time.Duration, f Func[T]) Func[T] {
	return func(ctx context.Context) (T, error) {
		b := backoff.NewExponentialBackOff()
		if initial > 0 {
			b.InitialInterval = initial
		}
		return backoff.Retry(
			ctx,
			func() (T, error) { return f(ctx) },
			backoff.WithBackOff(b),
			backoff.WithMaxTries(maxTries),
		)
	}
}
