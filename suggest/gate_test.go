package suggest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlinehq/redline/suggest"
)

func TestGate_StartsOpen(t *testing.T) {
	g := suggest.NewGate()
	assert.False(t, g.Paused())
	require.NoError(t, g.Wait(context.Background()))
}

func TestGate_PauseBlocksUntilResume(t *testing.T) {
	g := suggest.NewGate()
	g.Pause()
	assert.True(t, g.Paused())

	released := make(chan error, 1)
	go func() {
		released <- g.Wait(context.Background())
	}()

	select {
	case <-released:
		t.Fatal("wait returned while gate was paused")
	case <-time.After(50 * time.Millisecond):
	}

	g.Resume()

	select {
	case err := <-released:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after resume")
	}
}

func TestGate_WaitReturnsOnCancel(t *testing.T) {
	g := suggest.NewGate()
	g.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGate_PauseAndResumeAreIdempotent(t *testing.T) {
	g := suggest.NewGate()

	g.Pause()
	g.Pause()
	assert.True(t, g.Paused())

	g.Resume()
	g.Resume()
	assert.False(t, g.Paused())
	require.NoError(t, g.Wait(context.Background()))
}

func TestGate_Toggle(t *testing.T) {
	g := suggest.NewGate()

	assert.True(t, g.Toggle())
	assert.True(t, g.Paused())

	assert.False(t, g.Toggle())
	assert.False(t, g.Paused())
}
