package d2

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/reconquest/pkg/log"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2layouts/d2elklayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2themes/d2themescatalog"
	d2log "oss.terrastruct.com/d2/lib/log"
	"oss.terrastruct.com/d2/lib/textmeasure"
	"oss.terrastruct.com/util-go/go2"
)

const Name = "d2"

type Options struct {
	ThemeID int64
	Pad     int64
	// Layout is the default layout engine, "dagre" or "elk". Diagrams may
	// still pick their own through d2-config.
	Layout string
	// Scale and Browser apply to PNG output, which is produced by
	// screenshotting the SVG in headless Chrome.
	Scale   float64
	Browser renderer.Browser
}

func DefaultOptions() Options {
	return Options{
		ThemeID: d2themescatalog.GrapeSoda.ID,
		Pad:     5,
		Layout:  "dagre",
		Scale:   1.0,
	}
}

// Engine compiles d2 in-process, so concurrent renders need no locking.
type Engine struct {
	options Options
}

func New(options Options) *Engine {
	if options.Scale <= 0 {
		options.Scale = 1.0
	}

	return &Engine{options: options}
}

func (engine *Engine) Render(
	ctx context.Context,
	diagram []byte,
	format renderer.Format,
) ([]byte, error) {
	ctx, cancel := renderer.Begin(ctx)
	defer cancel()

	ctx = d2log.WithDefault(ctx)

	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return nil, err
	}

	layoutResolver := func(name string) (d2graph.LayoutGraph, error) {
		if name == "" {
			name = engine.options.Layout
		}

		switch name {
		case "elk":
			return d2elklayout.DefaultLayout, nil
		default:
			return d2dagrelayout.DefaultLayout, nil
		}
	}

	renderOpts := &d2svg.RenderOpts{
		Pad:     go2.Pointer(engine.options.Pad),
		ThemeID: go2.Pointer(engine.options.ThemeID),
	}
	compileOpts := &d2lib.CompileOptions{
		LayoutResolver: layoutResolver,
		Ruler:          ruler,
	}

	compiled, _, err := d2lib.Compile(ctx, string(diagram), compileOpts, renderOpts)
	if err != nil {
		return nil, err
	}

	svg, err := d2svg.Render(compiled, renderOpts)
	if err != nil {
		return nil, err
	}

	switch format {
	case renderer.FormatSVG:
		return svg, nil
	case renderer.FormatPNG:
		png, _, err := engine.convertSVGtoPNG(ctx, svg)
		return png, err
	default:
		return nil, fmt.Errorf("d2: unsupported format %q", format)
	}
}

func (engine *Engine) convertSVGtoPNG(ctx context.Context, svg []byte) ([]byte, *dom.BoxModel, error) {
	var (
		result []byte
		model  *dom.BoxModel
	)

	log.Debugf(nil, "converting d2 svg to png (scale %v)", engine.options.Scale)

	ctx, cancelAllocator := engine.options.Browser.Allocate(ctx)
	defer cancelAllocator()

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(fmt.Sprintf("data:image/svg+xml;base64,%s", base64.StdEncoding.EncodeToString(svg))),
		chromedp.ScreenshotScale(`document.querySelector("svg > svg")`, engine.options.Scale, &result, chromedp.ByJSPath),
		chromedp.Dimensions(`document.querySelector("svg > svg")`, &model, chromedp.ByJSPath),
	)
	if err != nil {
		return nil, nil, err
	}

	return result, model, nil
}
