package await

import (
	"context"
	"errors"
	"runtime/debug"
)

// A Func is a piece of work that produces a value of type T.
//
// A Func receives a context and must return promptly, with a relevant error,
// once the context is done. Everything in this package cancels work through
// contexts; a Func that ignores its context cannot be stopped early, only
// abandoned.
//
// A Func that has no meaningful value to produce can use a small type like
// struct{}.
type Func[T any] func(ctx context.Context) (T, error)

// ErrGoexit is the error of a [Task] whose [Func] called [runtime.Goexit]
// instead of returning.
var ErrGoexit = errors.New("await: task goroutine called runtime.Goexit")

// A Task is a handle to a [Func] running in its own goroutine.
//
// A Task settles exactly once, when its Func returns or panics. The Await
// method can be called any number of times, from any goroutine, and always
// agrees on the outcome.
//
// To create a Task, use [Spawn].
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	value  T
	err    error
	panic  *capturedPanic
}

// Spawn starts f in its own goroutine and returns a [Task] for awaiting it.
//
// The context given to f is derived from ctx; it is canceled when ctx is
// canceled, when the Cancel method is called, or when f returns.
//
// Spawn never blocks. There is no backpressure; see [Group] and [MergeSeq]
// for bounded alternatives.
func Spawn[T any](ctx context.Context, f Func[T]) *Task[T] {
	return spawn(ctx, f, nil)
}

// spawn is [Spawn] with a hook that runs in the task goroutine right before
// the task settles. The hook must not panic.
func spawn[T any](ctx context.Context, f Func[T], onSettle func(t *Task[T])) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{cancel: cancel, done: make(chan struct{})}
	go t.run(ctx, f, onSettle)
	return t
}

// settled returns a Task that settled with err before it ever ran.
func settled[T any](err error) *Task[T] {
	t := &Task[T]{cancel: func() {}, done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *Task[T]) run(ctx context.Context, f Func[T], onSettle func(t *Task[T])) {
	defer func() {
		if v := recover(); v != nil {
			t.panic = &capturedPanic{value: v, stack: debug.Stack()}
		}
		t.cancel()
		if onSettle != nil {
			onSettle(t)
		}
		close(t.done)
	}()
	t.err = ErrGoexit // In case f never returns. See ErrGoexit.
	t.value, t.err = f(ctx)
}

// Await blocks until t settles or ctx is done, whichever comes first.
//
// If t settled, Await returns the value and the error produced by the Func.
// If the Func panicked, Await re-raises the panic, with the stack trace of
// the task goroutine attached.
//
// If ctx is done first, Await returns a zero value and context.Cause(ctx);
// the task keeps running. Awaiting never stops a task; use Cancel for that.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		select {
		case <-t.done: // Settled and canceled at the same time; prefer the result.
		default:
			var zero T
			return zero, context.Cause(ctx)
		}
	}
	if t.panic != nil {
		repanic([]capturedPanic{*t.panic})
	}
	return t.value, t.err
}

// Cancel cancels the context the [Func] of t was given.
// Cancel does not wait for t to settle.
//
// Canceling a settled Task is a no-op.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Done returns a channel that is closed when t settles.
// Useful in select statements; for everything else, use Await.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Settled reports whether t has settled.
func (t *Task[T]) Settled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
