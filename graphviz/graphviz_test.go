package graphviz

import (
	"context"
	"testing"

	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/stretchr/testify/assert"
)

func TestRenderUnsupportedFormat(t *testing.T) {
	engine := New(Options{})
	defer func() {
		_ = engine.Close()
	}()

	_, err := engine.Render(context.Background(), []byte("digraph { a -> b }"), renderer.Format("gif"))
	assert.EqualError(t, err, `graphviz: unsupported format "gif"`)
	assert.Nil(t, engine.gv, "runtime must not start for a rejected format")
}

func TestCloseWithoutRender(t *testing.T) {
	assert.NoError(t, New(Options{}).Close())
}

var _ renderer.Engine = (*Engine)(nil)

func TestRenderSVG(t *testing.T) {
	engine := New(Options{Layout: "dot"})
	defer func() {
		_ = engine.Close()
	}()

	got, err := engine.Render(context.Background(), []byte("digraph { alpha -> beta }"), renderer.FormatSVG)
	assert.NoError(t, err)
	assert.Contains(t, string(got), "<svg")
	assert.Contains(t, string(got), "alpha")
}
