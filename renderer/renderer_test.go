package renderer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kovetskiy/mark-diagram/attachment"
	"github.com/kovetskiy/mark-diagram/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
	return append([]byte(string(format)+":"), diagram...), nil
}

func TestFormatOf(t *testing.T) {
	testcases := map[string]Format{
		"diagram.svg":        FormatSVG,
		"diagram.SVG":        FormatSVG,
		"images/diagram.png": FormatPNG,
		"a.b.png":            FormatPNG,
	}

	for file, expected := range testcases {
		format, err := FormatOf(file)
		assert.NoError(t, err, file)
		assert.Equal(t, expected, format, file)
	}

	for _, file := range []string{"diagram.gif", "diagram", "svg"} {
		_, err := FormatOf(file)
		assert.Error(t, err, file)
	}
}

func TestInvoke(t *testing.T) {
	dir := t.TempDir()
	invoker := NewInvoker(vfs.LocalOS)

	result, err := invoker.Invoke(
		context.Background(),
		EngineFunc(echo),
		"Example",
		[]byte("graph TD;"),
		dir,
		"nested/example.svg",
	)
	require.NoError(t, err)

	expected := filepath.Join(dir, "nested", "example.svg")
	assert.Equal(t, attachment.Attachment{
		Name:      "Example",
		Filename:  "nested/example.svg",
		Path:      expected,
		FileBytes: []byte("svg:graph TD;"),
		Checksum:  attachment.Checksum([]byte("graph TD;")),
	}, result)

	written, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Equal(t, "svg:graph TD;", string(written))
}

func TestInvokeOverwrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "example.png")
	require.NoError(t, os.WriteFile(target, []byte("stale and longer content"), 0o644))

	_, err := NewInvoker(vfs.LocalOS).Invoke(
		context.Background(), EngineFunc(echo), "Example", []byte("x"), dir, "example.png",
	)
	require.NoError(t, err)

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "png:x", string(written))
}

func TestInvokeRenderError(t *testing.T) {
	cause := errors.New("syntax error")
	dir := t.TempDir()

	_, err := NewInvoker(vfs.LocalOS).Invoke(
		context.Background(),
		EngineFunc(func(context.Context, []byte, Format) ([]byte, error) {
			return nil, cause
		}),
		"Broken",
		[]byte("graph ???"),
		dir,
		"broken.svg",
	)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "broken.svg", renderErr.File)
	assert.ErrorIs(t, err, cause)
	assert.NoFileExists(t, filepath.Join(dir, "broken.svg"))
}

func TestInvokeUnsupportedFormat(t *testing.T) {
	var calls atomic.Int32

	_, err := NewInvoker(vfs.LocalOS).Invoke(
		context.Background(),
		EngineFunc(func(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
			calls.Add(1)
			return echo(ctx, diagram, format)
		}),
		"Gif",
		[]byte("graph TD;"),
		t.TempDir(),
		"diagram.gif",
	)

	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
	assert.Equal(t, int32(0), calls.Load())
}

func TestInvokeTimeout(t *testing.T) {
	invoker := NewInvoker(vfs.LocalOS)
	invoker.Timeout = 10 * time.Millisecond

	_, err := invoker.Invoke(
		context.Background(),
		EngineFunc(func(ctx context.Context, _ []byte, _ Format) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
		"Slow",
		[]byte("graph TD;"),
		t.TempDir(),
		"slow.svg",
	)

	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type brokenFS struct {
	mkdirErr  error
	createErr error
	writeErr  error
	closeErr  error
}

type brokenFile struct {
	fs *brokenFS
}

func (fs *brokenFS) MkdirAll(string, os.FileMode) error {
	return fs.mkdirErr
}

func (fs *brokenFS) Create(string) (io.WriteCloser, error) {
	if fs.createErr != nil {
		return nil, fs.createErr
	}
	return &brokenFile{fs: fs}, nil
}

func (file *brokenFile) Write(data []byte) (int, error) {
	if file.fs.writeErr != nil {
		return 0, file.fs.writeErr
	}
	return len(data), nil
}

func (file *brokenFile) Close() error {
	return file.fs.closeErr
}

func TestInvokeIOError(t *testing.T) {
	cause := errors.New("disk full")

	testcases := map[string]*brokenFS{
		"mkdir":  {mkdirErr: cause},
		"create": {createErr: cause},
		"write":  {writeErr: cause},
		"close":  {closeErr: cause},
	}

	for name, fs := range testcases {
		t.Run(name, func(t *testing.T) {
			_, err := NewInvoker(fs).Invoke(
				context.Background(),
				EngineFunc(echo),
				"Example",
				[]byte("graph TD;"),
				"/docs",
				"example.svg",
			)

			var ioErr *IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, filepath.Join("/docs", "example.svg"), ioErr.Path)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestCacheRendersOnce(t *testing.T) {
	var calls atomic.Int32

	cache := NewCache("test", EngineFunc(
		func(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
			calls.Add(1)
			return echo(ctx, diagram, format)
		},
	), time.Minute, 0)

	for i := 0; i < 3; i++ {
		image, err := cache.Render(context.Background(), []byte("a"), FormatSVG)
		require.NoError(t, err)
		assert.Equal(t, "svg:a", string(image))
	}

	_, err := cache.Render(context.Background(), []byte("a"), FormatPNG)
	require.NoError(t, err)

	_, err = cache.Render(context.Background(), []byte("b"), FormatSVG)
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, cache.Len())
}

func TestCacheCollapsesConcurrentRenders(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	cache := NewCache("test", EngineFunc(
		func(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
			calls.Add(1)
			<-release
			return echo(ctx, diagram, format)
		},
	), time.Minute, 10)

	var group sync.WaitGroup
	for i := 0; i < 4; i++ {
		group.Add(1)
		go func() {
			defer group.Done()

			image, err := cache.Render(context.Background(), []byte("same"), FormatSVG)
			assert.NoError(t, err)
			assert.Equal(t, "svg:same", string(image))
		}()
	}

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, time.Millisecond)

	close(release)
	group.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(4))
	assert.Equal(t, 1, cache.Len())
}

func TestCacheIsolatesCallerCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	cache := NewCache("test", EngineFunc(
		func(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
			close(started)
			select {
			case <-release:
				return echo(ctx, diagram, format)
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	), time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Render(ctx, []byte("shared"), FormatSVG)
		first <- err
	}()

	<-started

	second := make(chan []byte, 1)
	go func() {
		image, err := cache.Render(context.Background(), []byte("shared"), FormatSVG)
		assert.NoError(t, err)
		second <- image
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.Equal(t, "svg:shared", string(<-second))
}

func TestBeginStartsRecordedTimeout(t *testing.T) {
	ctx, cancel := Begin(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = Begin(WithTimeout(context.Background(), time.Minute))
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	nested, cancelNested := Begin(WithTimeout(ctx, time.Hour))
	defer cancelNested()

	_, ok = nested.Deadline()
	assert.True(t, ok)

	inner, cancelInner := Begin(nested)
	defer cancelInner()

	innerDeadline, _ := inner.Deadline()
	nestedDeadline, _ := nested.Deadline()
	assert.Equal(t, nestedDeadline, innerDeadline)
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	var calls atomic.Int32

	cache := NewCache("test", EngineFunc(
		func(context.Context, []byte, Format) ([]byte, error) {
			calls.Add(1)
			return nil, errors.New("boom")
		},
	), time.Minute, 0)

	for i := 0; i < 2; i++ {
		_, err := cache.Render(context.Background(), []byte("a"), FormatSVG)
		assert.Error(t, err)
	}

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, cache.Len())
}
