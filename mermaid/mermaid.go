package mermaid

import (
	"context"
	"fmt"

	mermaid "github.com/dreampuf/mermaid.go"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/reconquest/karma-go"
	"github.com/reconquest/pkg/log"
	"golang.org/x/sync/semaphore"
)

const Name = "mermaid"

type Options struct {
	Browser renderer.Browser
	// Scale applies to PNG output only.
	Scale float64
}

// Engine is a mermaid renderer backed by a single headless browser. The
// browser is launched on the first render and shared by every caller;
// renders are serialized because the page is not safe for concurrent use.
// The render timeout starts once a render holds the browser.
type Engine struct {
	options Options

	// slot guards engine and cancel
	slot   *semaphore.Weighted
	engine *mermaid.RenderEngine
	cancel context.CancelFunc

	draw func(ctx context.Context, diagram []byte, format renderer.Format) ([]byte, error)
}

func New(options Options) *Engine {
	if options.Scale <= 0 {
		options.Scale = 1.0
	}

	engine := &Engine{
		options: options,
		slot:    semaphore.NewWeighted(1),
	}
	engine.draw = engine.drawInBrowser

	return engine
}

type result struct {
	image []byte
	err   error
}

func (engine *Engine) Render(
	ctx context.Context,
	diagram []byte,
	format renderer.Format,
) ([]byte, error) {
	err := engine.slot.Acquire(ctx, 1)
	if err != nil {
		return nil, err
	}
	defer engine.slot.Release(1)

	ctx, cancel := renderer.Begin(ctx)
	defer cancel()

	return engine.draw(ctx, diagram, format)
}

func (engine *Engine) drawInBrowser(
	ctx context.Context,
	diagram []byte,
	format renderer.Format,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := engine.launch()
	if err != nil {
		return nil, err
	}

	done := make(chan result, 1)
	go func(handle *mermaid.RenderEngine) {
		image, err := render(handle, diagram, format, engine.options.Scale)
		done <- result{image: image, err: err}
	}(engine.engine)

	select {
	case result := <-done:
		return result.image, result.err
	case <-ctx.Done():
		// the page is stuck on this diagram; drop the browser so the next
		// render starts from a fresh one
		log.Warningf(ctx.Err(), "mermaid render aborted, restarting browser")
		engine.reset()
		return nil, ctx.Err()
	}
}

func render(
	handle *mermaid.RenderEngine,
	diagram []byte,
	format renderer.Format,
	scale float64,
) ([]byte, error) {
	switch format {
	case renderer.FormatSVG:
		svg, err := handle.Render(string(diagram))
		if err != nil {
			return nil, err
		}
		return []byte(svg), nil

	case renderer.FormatPNG:
		png, _, err := handle.RenderAsScaledPng(string(diagram), scale)
		if err != nil {
			return nil, err
		}
		return png, nil

	default:
		return nil, fmt.Errorf("mermaid: unsupported format %q", format)
	}
}

func (engine *Engine) launch() error {
	if engine.engine != nil {
		return nil
	}

	log.Debugf(nil, "setting up mermaid renderer (no-sandbox: %v)", engine.options.Browser.NoSandbox)

	ctx, cancel := engine.options.Browser.Allocate(context.Background())

	handle, err := mermaid.NewRenderEngine(ctx)
	if err != nil {
		cancel()
		return karma.Format(err, "unable to launch mermaid render engine")
	}

	engine.engine = handle
	engine.cancel = cancel

	return nil
}

func (engine *Engine) reset() {
	if engine.engine != nil {
		engine.engine.Cancel()
		engine.engine = nil
	}
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

// Close shuts the browser down. The engine can still be used afterwards; it
// will launch a new browser.
func (engine *Engine) Close() {
	// never fails with a background context
	_ = engine.slot.Acquire(context.Background(), 1)
	defer engine.slot.Release(1)

	engine.reset()
}
