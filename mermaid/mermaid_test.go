package mermaid

import (
	"context"
	"testing"
	"time"

	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsScale(t *testing.T) {
	assert.Equal(t, 1.0, New(Options{}).options.Scale)
	assert.Equal(t, 2.5, New(Options{Scale: 2.5}).options.Scale)
}

func TestRenderHonorsCanceledContext(t *testing.T) {
	engine := New(Options{})
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Render(ctx, []byte("graph TD;\n A-->B;"), renderer.FormatSVG)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, engine.engine, "browser must not be launched for a canceled render")
}

func TestCloseWithoutLaunch(t *testing.T) {
	engine := New(Options{})
	assert.NotPanics(t, engine.Close)
}

func TestQueuedRenderStartsTimeoutWhenAdmitted(t *testing.T) {
	engine := New(Options{})
	engine.draw = func(ctx context.Context, diagram []byte, format renderer.Format) ([]byte, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			return nil, assert.AnError
		}
		if time.Until(deadline) < 20*time.Millisecond {
			return nil, context.DeadlineExceeded
		}

		return []byte("<svg/>"), nil
	}

	require.NoError(t, engine.slot.Acquire(context.Background(), 1))

	go func() {
		time.Sleep(100 * time.Millisecond)
		engine.slot.Release(1)
	}()

	ctx := renderer.WithTimeout(context.Background(), 50*time.Millisecond)

	image, err := engine.Render(ctx, []byte("graph TD;"), renderer.FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(image))
}

func TestQueuedRenderHonorsCallerContext(t *testing.T) {
	engine := New(Options{})
	engine.draw = func(context.Context, []byte, renderer.Format) ([]byte, error) {
		t.Error("render must not start")
		return nil, nil
	}

	require.NoError(t, engine.slot.Acquire(context.Background(), 1))
	defer engine.slot.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := engine.Render(ctx, []byte("graph TD;"), renderer.FormatSVG)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

var _ renderer.Engine = (*Engine)(nil)
