package await

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// A Group awaits a collection of Funcs that are spawned one by one, when the
// whole collection isn't known up front. It is the incremental counterpart of
// [All]: the first failure cancels every other Func in the group.
//
// Unlike [Spawn], a Group can provide backpressure: with a limit set, Spawn
// blocks while too many Funcs are in flight.
//
// A Group must be created with [NewGroup] and must not be copied.
type Group[T any] struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	sem    *semaphore.Weighted

	wg       sync.WaitGroup
	once     sync.Once
	firstErr error

	mu     sync.Mutex
	tasks  []*Task[T]
	joined bool
}

// NewGroup creates a [Group] whose Funcs run under a context derived from
// ctx.
func NewGroup[T any](ctx context.Context) *Group[T] {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Group[T]{ctx: ctx, cancel: cancel}
}

// SetLimit limits the number of Funcs in flight to n. With a limit set,
// Spawn blocks until a slot frees up.
//
// SetLimit must be called before the first call to Spawn.
func (g *Group[T]) SetLimit(n int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tasks) != 0 {
		panic("await(Group): SetLimit called after Spawn")
	}
	g.sem = semaphore.NewWeighted(n)
}

func (g *Group[T]) fail(err error) {
	g.once.Do(func() {
		g.firstErr = err
		g.cancel(err)
	})
}

// Spawn starts f in its own goroutine as part of the group.
//
// With a limit set, Spawn blocks until a slot frees up or the group's context
// is done; in the latter case f is not run, and its position in the results
// carries the group's error instead. Without a limit, Spawn never blocks.
//
// Spawn must not be called after Await.
func (g *Group[T]) Spawn(f Func[T]) {
	g.mu.Lock()
	if g.joined {
		g.mu.Unlock()
		panic("await(Group): Spawn called after Await")
	}
	g.mu.Unlock()

	if g.sem != nil {
		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			// The group is already failing or canceled; f would only observe
			// a done context. Hold its position with the reason instead.
			if cause := context.Cause(g.ctx); cause != nil {
				err = cause
			}
			g.fail(err)
			g.mu.Lock()
			g.tasks = append(g.tasks, settled[T](err))
			g.mu.Unlock()
			return
		}
	}

	g.wg.Add(1)
	t := spawn(g.ctx, f, func(t *Task[T]) {
		switch {
		case t.panic != nil:
			g.fail(errPanicked)
		case t.err != nil:
			g.fail(t.err)
		}
		if g.sem != nil {
			g.sem.Release(1)
		}
		g.wg.Done()
	})

	g.mu.Lock()
	g.tasks = append(g.tasks, t)
	g.mu.Unlock()
}

// Await blocks until every spawned Func has settled.
//
// On success it returns the produced values in spawn order. On failure it
// returns the first error that occurred; values at positions whose Funcs were
// canceled or failed are zero. Panics from any Func are re-raised after
// everything has settled.
//
// Await releases the group's context; the Group must not be reused.
func (g *Group[T]) Await() ([]T, error) {
	g.wg.Wait()

	g.mu.Lock()
	g.joined = true
	tasks := g.tasks
	g.mu.Unlock()

	g.cancel(nil)

	values, _ := reap(tasks)
	return values, g.firstErr
}
