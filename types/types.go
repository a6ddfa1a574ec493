package types

import "time"

// DiagramConfig is the run configuration shared by the CLI and the engines
// it builds.
type DiagramConfig struct {
	Features []string

	MermaidMarker  string
	D2Marker       string
	GraphvizMarker string

	MermaidScale   float64
	D2Scale        float64
	D2Layout       string
	GraphvizLayout string

	NoSandbox  bool
	ChromePath string

	ReferenceType string
	OutputDir     string
	FailFast      bool
	RenderTimeout time.Duration
	CacheTTL      time.Duration
}
