// Package renderer turns diagram sources into image files through pluggable
// engines.
package renderer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// FormatOf derives the output format from the extension of file.
func FormatOf(file string) (Format, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %q", filepath.Ext(file))
	}
}

// Engine renders diagram source into image bytes. Implementations must accept
// concurrent calls, serializing internally if the backend requires it, and
// call Begin when the render actually starts.
type Engine interface {
	Render(ctx context.Context, diagram []byte, format Format) ([]byte, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, diagram []byte, format Format) ([]byte, error)

func (fn EngineFunc) Render(ctx context.Context, diagram []byte, format Format) ([]byte, error) {
	ctx, cancel := Begin(ctx)
	defer cancel()

	return fn(ctx, diagram, format)
}

// RenderError means the engine could not produce an image.
type RenderError struct {
	File string
	Err  error
}

func (err *RenderError) Error() string {
	return fmt.Sprintf("unable to render %q: %s", err.File, err.Err)
}

func (err *RenderError) Unwrap() error {
	return err.Err
}

// IOError means a diagram source could not be read or the rendered image
// could not be written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (err *IOError) Error() string {
	return fmt.Sprintf("unable to %s %q: %s", err.Op, err.Path, err.Err)
}

func (err *IOError) Unwrap() error {
	return err.Err
}
