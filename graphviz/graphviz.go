package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-graphviz"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/reconquest/karma-go"
	"github.com/reconquest/pkg/log"
)

const Name = "dot"

type Options struct {
	// Layout is the graphviz layout engine: dot, neato, circo...
	Layout string
}

// Engine renders Graphviz DOT sources. The graphviz runtime is created on
// first use and shared; renders are serialized on it.
type Engine struct {
	options Options

	mutex sync.Mutex
	gv    *graphviz.Graphviz
}

func New(options Options) *Engine {
	return &Engine{options: options}
}

func (engine *Engine) Render(
	ctx context.Context,
	diagram []byte,
	format renderer.Format,
) ([]byte, error) {
	var output graphviz.Format
	switch format {
	case renderer.FormatSVG:
		output = graphviz.SVG
	case renderer.FormatPNG:
		output = graphviz.PNG
	default:
		return nil, fmt.Errorf("graphviz: unsupported format %q", format)
	}

	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	ctx, cancel := renderer.Begin(ctx)
	defer cancel()

	if engine.gv == nil {
		log.Debugf(nil, "setting up graphviz renderer")

		// the runtime outlives this render
		gv, err := graphviz.New(context.WithoutCancel(ctx))
		if err != nil {
			return nil, karma.Format(err, "unable to init graphviz")
		}

		engine.gv = gv
	}

	if engine.options.Layout != "" {
		engine.gv.SetLayout(graphviz.Layout(engine.options.Layout))
	}

	graph, err := graphviz.ParseBytes(diagram)
	if err != nil {
		return nil, karma.Format(err, "unable to parse DOT")
	}
	defer func() {
		_ = graph.Close()
	}()

	var buffer bytes.Buffer
	err = engine.gv.Render(ctx, graph, output, &buffer)
	if err != nil {
		return nil, karma.Format(err, "unable to render DOT")
	}

	return buffer.Bytes(), nil
}

func (engine *Engine) Close() error {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	if engine.gv == nil {
		return nil
	}

	err := engine.gv.Close()
	engine.gv = nil

	return err
}
