package await_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/b97tsk/await"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSpawnAwait(t *testing.T) {
	ctx := context.Background()

	task := await.Spawn(ctx, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := task.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.True(t, task.Settled())

	// Awaiting again agrees on the outcome.
	v, err = task.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestAwaitBoundedByContext(t *testing.T) {
	release := make(chan struct{})

	task := await.Spawn(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := task.Await(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, task.Settled(), "an abandoned wait must not stop the task")

	close(release)

	v, err := task.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestCancel(t *testing.T) {
	task := await.Spawn(context.Background(), func(ctx context.Context) (struct{}, error) {
		<-ctx.Done()
		return struct{}{}, ctx.Err()
	})

	task.Cancel()

	_, err := task.Await(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPanicPropagatesToAwaiter(t *testing.T) {
	boom := errors.New("boom")

	task := await.Spawn(context.Background(), func(ctx context.Context) (int, error) {
		panic(boom)
	})

	defer func() {
		v := recover()
		require.NotNil(t, v, "Await must re-raise the panic")
		err, ok := v.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "panic: boom")
		require.Contains(t, err.Error(), "goroutine", "the task stack trace must come along")
	}()

	task.Await(context.Background())
	t.Fatal("unreachable")
}

func TestGoexit(t *testing.T) {
	task := await.Spawn(context.Background(), func(ctx context.Context) (int, error) {
		runtime.Goexit()
		return 1, nil
	})

	_, err := task.Await(context.Background())
	require.ErrorIs(t, err, await.ErrGoexit)
}
