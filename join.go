package await

import (
	"context"
	"errors"
	"sync"
)

var errPanicked = errors.New("await: a joined task panicked")

// Join runs each of the given Funcs in its own goroutine and awaits until all
// of them settle.
//
// Results are positional: values[i] is what s[i] produced. Errors from all
// Funcs are combined with [errors.Join]; a Func that failed leaves a zero
// value at its position. If any Func panicked, Join re-raises every captured
// panic after all Funcs have settled.
//
// Join does not cancel anything on failure; every Func runs to its own end.
// Total elapsed time is therefore about the maximum single-Func duration,
// never the sum. For fail-fast behavior, use [All].
//
// With no Funcs, Join completes immediately.
func Join[T any](ctx context.Context, s ...Func[T]) ([]T, error) {
	tasks := make([]*Task[T], len(s))
	for i, f := range s {
		tasks[i] = Spawn(ctx, f)
	}
	return reap(tasks)
}

// All is like [Join], but the first Func to fail cancels the contexts of all
// the others, and its error is the only one reported.
//
// All still awaits every Func before returning, so no goroutines are left
// behind; Funcs canceled this way typically settle promptly with a context
// error, which All discards. On success, results are positional, like Join's.
//
// A panicking Func cancels its siblings too; the panic is re-raised in the
// caller once everything has settled.
func All[T any](ctx context.Context, s ...Func[T]) ([]T, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var once sync.Once
	var firstErr error
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel(err)
		})
	}

	tasks := make([]*Task[T], len(s))
	for i, f := range s {
		tasks[i] = spawn(ctx, f, func(t *Task[T]) {
			switch {
			case t.panic != nil:
				fail(errPanicked)
			case t.err != nil:
				fail(t.err)
			}
		})
	}

	values, _ := reap(tasks)
	return values, firstErr
}

// Select runs each of the given Funcs in its own goroutine and awaits until
// the first of them settles. The rest are canceled, and Select awaits them
// too before returning, so no goroutines are left behind.
//
// Select returns whatever the winning Func produced, value or error. Panics
// from any Func, winner or loser, are re-raised in the caller.
//
// With no Funcs, Select blocks until ctx is done and returns its cause.
func Select[T any](ctx context.Context, s ...Func[T]) (T, error) {
	if len(s) == 0 {
		<-ctx.Done()
		var zero T
		return zero, context.Cause(ctx)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var once sync.Once
	var winner *Task[T]
	pick := func(t *Task[T]) {
		once.Do(func() {
			winner = t
			cancel(errNotSelected)
		})
	}

	tasks := make([]*Task[T], len(s))
	for i, f := range s {
		tasks[i] = spawn(ctx, f, pick)
	}
	for _, t := range tasks {
		<-t.done
	}

	var panics []capturedPanic
	for _, t := range tasks {
		if t.panic != nil {
			panics = append(panics, *t.panic)
		}
	}
	repanic(panics)

	return winner.value, winner.err
}

var errNotSelected = errors.New("await: another task settled first")

// reap awaits every task, collecting values positionally and non-nil errors
// in task order, then re-raises any captured panics.
func reap[T any](tasks []*Task[T]) ([]T, error) {
	values := make([]T, len(tasks))
	var errs []error
	var panics []capturedPanic
	for i, t := range tasks {
		<-t.done
		if t.panic != nil {
			panics = append(panics, *t.panic)
			continue
		}
		values[i] = t.value
		if t.err != nil {
			errs = append(errs, t.err)
		}
	}
	repanic(panics)
	return values, errors.Join(errs...)
}
