package util

import (
	"slices"

	"github.com/kovetskiy/mark-diagram/d2"
	"github.com/kovetskiy/mark-diagram/graphviz"
	"github.com/kovetskiy/mark-diagram/markdown"
	"github.com/kovetskiy/mark-diagram/mermaid"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/kovetskiy/mark-diagram/types"
	"github.com/reconquest/pkg/log"
)

const (
	FeatureMermaid  = "mermaid"
	FeatureD2       = "d2"
	FeatureGraphviz = "graphviz"
)

var Features = []string{
	FeatureMermaid,
	FeatureD2,
	FeatureGraphviz,
	markdown.FeatureMkDocsAdmonitions,
	markdown.FeatureGHAlerts,
}

// Engines holds the render engines enabled for a run, keyed by the code
// block marker they render.
type Engines struct {
	Renderers map[string]renderer.Engine

	closers []func()
}

func NewEngines(config types.DiagramConfig) *Engines {
	engines := &Engines{Renderers: map[string]renderer.Engine{}}

	browser := renderer.Browser{
		NoSandbox: config.NoSandbox,
		ExecPath:  config.ChromePath,
	}

	if slices.Contains(config.Features, FeatureMermaid) {
		engine := mermaid.New(mermaid.Options{
			Browser: browser,
			Scale:   config.MermaidScale,
		})
		engines.closers = append(engines.closers, engine.Close)
		engines.add(mermaid.Name, config.MermaidMarker, engine, config)
	}

	if slices.Contains(config.Features, FeatureD2) {
		options := d2.DefaultOptions()
		options.Browser = browser
		options.Scale = config.D2Scale
		if config.D2Layout != "" {
			options.Layout = config.D2Layout
		}
		engines.add(d2.Name, config.D2Marker, d2.New(options), config)
	}

	if slices.Contains(config.Features, FeatureGraphviz) {
		engine := graphviz.New(graphviz.Options{Layout: config.GraphvizLayout})
		engines.closers = append(engines.closers, func() {
			if err := engine.Close(); err != nil {
				log.Errorf(err, "unable to close graphviz")
			}
		})
		engines.add(graphviz.Name, config.GraphvizMarker, engine, config)
	}

	return engines
}

func (engines *Engines) add(
	name string,
	marker string,
	engine renderer.Engine,
	config types.DiagramConfig,
) {
	if marker == "" {
		marker = name
	}

	if config.CacheTTL > 0 {
		engine = renderer.NewCache(name, engine, config.CacheTTL, renderer.DefaultCacheCapacity)
	}

	log.Debugf(nil, "%s engine renders %q code blocks", name, marker)

	engines.Renderers[marker] = engine
}

// Close shuts down engines holding external resources such as browsers.
func (engines *Engines) Close() {
	for _, closer := range engines.closers {
		closer()
	}
}
