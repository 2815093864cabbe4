package await_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/b97tsk/await"
)

func TestGroupCollectsInSpawnOrder(t *testing.T) {
	g := await.NewGroup[int](context.Background())

	for i := range 5 {
		g.Spawn(func(ctx context.Context) (int, error) {
			// Finish in reverse spawn order.
			return i, await.Sleep(ctx, time.Duration(5-i)*10*time.Millisecond)
		})
	}

	values, err := g.Await()
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4}, values)
}

func TestGroupLimit(t *testing.T) {
	g := await.NewGroup[struct{}](context.Background())
	g.SetLimit(2)

	var cur, max atomic.Int32
	for range 8 {
		g.Spawn(func(ctx context.Context) (struct{}, error) {
			n := cur.Add(1)
			for {
				m := max.Load()
				if n <= m || max.CompareAndSwap(m, n) {
					break
				}
			}
			defer cur.Add(-1)
			return struct{}{}, await.Sleep(ctx, 10*time.Millisecond)
		})
	}

	_, err := g.Await()
	require.NoError(t, err)
	require.LessOrEqual(t, max.Load(), int32(2))
}

func TestGroupFailFast(t *testing.T) {
	boom := errors.New("boom")
	canceled := make(chan struct{})

	g := await.NewGroup[int](context.Background())
	g.Spawn(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(canceled)
		return 0, ctx.Err()
	})
	g.Spawn(func(ctx context.Context) (int, error) {
		return 0, boom
	})

	_, err := g.Await()
	require.ErrorIs(t, err, boom)

	select {
	case <-canceled:
	default:
		t.Fatal("sibling was not canceled")
	}
}

func TestGroupSetLimitAfterSpawn(t *testing.T) {
	g := await.NewGroup[int](context.Background())
	g.Spawn(func(ctx context.Context) (int, error) { return 1, nil })

	require.PanicsWithValue(t, "await(Group): SetLimit called after Spawn", func() {
		g.SetLimit(2)
	})

	values, err := g.Await()
	require.NoError(t, err)
	require.Equal(t, []int{1}, values)
}

func TestGroupSpawnAfterAwait(t *testing.T) {
	g := await.NewGroup[int](context.Background())
	g.Spawn(func(ctx context.Context) (int, error) { return 1, nil })

	_, err := g.Await()
	require.NoError(t, err)

	require.PanicsWithValue(t, "await(Group): Spawn called after Await", func() {
		g.Spawn(func(ctx context.Context) (int, error) { return 2, nil })
	})
}

func TestGroupSpawnRejectedWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := await.NewGroup[int](ctx)
	g.SetLimit(1)
	cancel()

	var ran atomic.Bool
	g.Spawn(func(ctx context.Context) (int, error) {
		ran.Store(true)
		return 1, nil
	})

	values, err := g.Await()
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []int{0}, values, "a rejected Func still holds its position")
	require.False(t, ran.Load(), "a rejected Func must not run")
}

func TestGroupEmpty(t *testing.T) {
	g := await.NewGroup[int](context.Background())
	values, err := g.Await()
	require.NoError(t, err)
	require.Empty(t, values)
}
