package await

import (
	"context"
	"iter"

	"golang.org/x/sync/semaphore"
)

// MergeSeq runs each of the Funcs from seq in its own goroutine, at most
// concurrency at a time, and yields their outcomes in input order as they
// become available. Funcs later in seq are not pulled before a slot frees up.
//
// Outcomes arrive in input order, not completion order, so a slow Func delays
// the yielding (but not the running) of those after it.
//
// Breaking out of the range loop cancels the contexts of all Funcs still in
// flight and awaits them before returning, so no goroutines are left behind.
// Panics from any Func are re-raised in the ranging goroutine.
//
// The concurrency must be positive. If it is zero, no Funcs are run and
// MergeSeq blocks until ctx is done.
//
// For running the Funcs one after another, use a concurrency of 1.
func MergeSeq[T any](ctx context.Context, concurrency int64, seq iter.Seq[Func[T]]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sem := semaphore.NewWeighted(concurrency)
		tasks := make(chan *Task[T])

		go func() {
			defer close(tasks)
			for f := range seq {
				if sem.Acquire(ctx, 1) != nil {
					return
				}
				// The send never blocks for good: the other side drains
				// the channel until it is closed, even on early break.
				tasks <- spawn(ctx, f, func(*Task[T]) { sem.Release(1) })
			}
		}()

		var panics []capturedPanic

		stop := func() {
			cancel()
			for t := range tasks {
				<-t.done
				if t.panic != nil {
					panics = append(panics, *t.panic)
				}
			}
		}

		for t := range tasks {
			<-t.done
			if t.panic != nil {
				panics = append(panics, *t.panic)
				stop()
				repanic(panics)
			}
			if !yield(t.value, t.err) {
				stop()
				repanic(panics)
				return
			}
		}
	}
}
