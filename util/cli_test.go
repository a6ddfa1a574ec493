package util

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kovetskiy/mark-diagram/mermaid"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/kovetskiy/mark-diagram/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
)

func runWithArgs(args []string) error {
	cmd := &cli.Command{
		Flags:  flags(),
		Before: CheckFlags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return nil
		},
	}
	return cmd.Run(context.Background(), args)
}

func TestCheckFlags(t *testing.T) {
	testcases := map[string]struct {
		args  []string
		valid bool
	}{
		"defaults":             {args: []string{"cmd"}, valid: true},
		"shortcut references":  {args: []string{"cmd", "--reference-type", "shortcut"}, valid: true},
		"mdast input":          {args: []string{"cmd", "--input-format", "mdast"}, valid: true},
		"all features":         {args: []string{"cmd", "--features", "mermaid,d2,graphviz,mkdocsadmonitions,ghalerts"}, valid: true},
		"engine with alerts":   {args: []string{"cmd", "--features", "d2,ghalerts"}, valid: true},
		"custom marker":        {args: []string{"cmd", "--mermaid-marker", "mmd"}, valid: true},
		"unknown reference":    {args: []string{"cmd", "--reference-type", "inline"}},
		"unknown input format": {args: []string{"cmd", "--input-format", "html"}},
		"unknown feature":      {args: []string{"cmd", "--features", "plantuml"}},
		"no engine":            {args: []string{"cmd", "--features", "ghalerts"}},
		"only admonitions":     {args: []string{"cmd", "--features", "mkdocsadmonitions"}},
		"duplicate marker":     {args: []string{"cmd", "--d2-marker", "mermaid"}},
	}

	for name, testcase := range testcases {
		t.Run(name, func(t *testing.T) {
			err := runWithArgs(testcase.args)
			if testcase.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigFromCommand(t *testing.T) {
	var config types.DiagramConfig

	cmd := &cli.Command{
		Flags: flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config = ConfigFromCommand(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{
		"cmd",
		"--features", "d2,graphviz",
		"--d2-scale", "2",
		"--d2-layout", "elk",
		"--graphviz-marker", "graphviz",
		"--reference-type", "collapsed",
		"--output-dir", "images",
		"--fail-fast",
		"--no-sandbox",
		"--render-timeout", "10s",
		"--cache-ttl", "0s",
	})
	require.NoError(t, err)

	assert.Equal(t, types.DiagramConfig{
		Features:       []string{"d2", "graphviz"},
		MermaidMarker:  "mermaid",
		D2Marker:       "d2",
		GraphvizMarker: "graphviz",
		MermaidScale:   1.0,
		D2Scale:        2.0,
		D2Layout:       "elk",
		GraphvizLayout: "dot",
		NoSandbox:      true,
		ReferenceType:  "collapsed",
		OutputDir:      "images",
		FailFast:       true,
		RenderTimeout:  10 * time.Second,
	}, config)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MARK_DIAGRAM_OUTPUT_DIR", "static")
	t.Setenv("MARK_DIAGRAM_MERMAID_MARKER", "mmd")

	var config types.DiagramConfig

	cmd := &cli.Command{
		Flags: flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config = ConfigFromCommand(cmd)
			return nil
		},
	}

	require.NoError(t, cmd.Run(context.Background(), []string{
		"cmd", "--config", filepath.Join(t.TempDir(), "missing.toml"),
	}))

	assert.Equal(t, "static", config.OutputDir)
	assert.Equal(t, "mmd", config.MermaidMarker)
	assert.Equal(t, renderer.DefaultTimeout, config.RenderTimeout)
	assert.Equal(t, renderer.DefaultCacheTTL, config.CacheTTL)
}

func TestOutputPath(t *testing.T) {
	testcases := []struct {
		file     string
		output   string
		expected string
	}{
		{file: "docs/guide.md", output: "", expected: filepath.Join("docs", "guide.mdast.json")},
		{file: "docs/guide.md", output: "out", expected: filepath.Join("out", "guide.mdast.json")},
		{file: "README", output: "", expected: "README.mdast.json"},
		{file: "docs/guide.md", output: "-", expected: "-"},
	}

	for _, testcase := range testcases {
		assert.Equal(
			t,
			testcase.expected,
			OutputPath(testcase.file, testcase.output),
			testcase.file+" -> "+testcase.output,
		)
	}
}

func TestNewEngines(t *testing.T) {
	engines := NewEngines(types.DiagramConfig{
		Features:       []string{FeatureD2, FeatureGraphviz},
		D2Marker:       "d2lang",
		GraphvizMarker: "",
		CacheTTL:       time.Minute,
	})
	defer engines.Close()

	require.Len(t, engines.Renderers, 2)
	assert.IsType(t, &renderer.Cache{}, engines.Renderers["d2lang"])
	assert.IsType(t, &renderer.Cache{}, engines.Renderers["dot"])

	uncached := NewEngines(types.DiagramConfig{
		Features: []string{FeatureMermaid},
	})
	defer uncached.Close()

	require.Contains(t, uncached.Renderers, "mermaid")
	assert.IsType(t, &mermaid.Engine{}, uncached.Renderers["mermaid"])
}

func run(t *testing.T, stdout *bytes.Buffer, args ...string) {
	t.Helper()

	cmd := &cli.Command{
		Name:   "mark-diagram",
		Flags:  flags(),
		Before: CheckFlags,
		Action: RunMarkDiagram,
		Writer: stdout,
	}

	base := []string{
		"mark-diagram",
		"--log-level", "ERROR",
		"--color", "never",
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--continue-on-error",
	}

	require.NoError(t, cmd.Run(context.Background(), append(base, args...)))
}

const architectureDocument = "# Architecture\n" +
	"\n" +
	"```d2 file=images/architecture.svg name=Architecture alt=Overview\n" +
	"client -> server: request\n" +
	"```\n" +
	"\n" +
	"```d2 name=Skipped\n" +
	"a -> b\n" +
	"```\n"

func TestRunMarkDiagram(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arch.md"), []byte(architectureDocument), 0o644))

	run(t, &bytes.Buffer{}, "--features", "d2", "--files", filepath.Join(dir, "*.md"))

	image, err := os.ReadFile(filepath.Join(dir, "images", "architecture.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(image), "<svg")

	data, err := os.ReadFile(filepath.Join(dir, "arch.mdast.json"))
	require.NoError(t, err)

	tree := gjson.ParseBytes(data)
	assert.Equal(t, "root", tree.Get("type").String())
	assert.Equal(t, []interface{}{"heading", "imageReference", "definition", "code"}, tree.Get("children.#.type").Value())
	assert.Equal(t, "architecture", tree.Get("children.1.identifier").String())
	assert.Equal(t, "full", tree.Get("children.1.referenceType").String())
	assert.Equal(t, "images/architecture.svg", tree.Get("children.2.url").String())
	assert.Equal(t, "d2 name=Skipped", tree.Get("children.3.lang").String()+" "+tree.Get("children.3.meta").String())
}

func TestRunMarkDiagramMdastInput(t *testing.T) {
	dir := t.TempDir()
	input := `{
		"type": "root",
		"children": [
			{"type": "code", "lang": "diagram", "meta": "file=flow.svg name=Flow", "value": "a -> b"}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flow.json"), []byte(input), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	var stdout bytes.Buffer
	run(
		t,
		&stdout,
		"--features", "d2",
		"--d2-marker", "diagram",
		"--input-format", "mdast",
		"--reference-type", "shortcut",
		"--output", "-",
		"--files", filepath.Join(dir, "*.json"),
	)

	tree := gjson.Parse(stdout.String())
	assert.Equal(t, "imageReference", tree.Get("children.0.type").String())
	assert.Equal(t, "shortcut", tree.Get("children.0.referenceType").String())
	assert.Equal(t, "flow.svg", tree.Get("children.1.url").String())
	assert.FileExists(t, filepath.Join(dir, "flow.svg"))
}

func TestRunMarkDiagramNoFiles(t *testing.T) {
	command := func() *cli.Command {
		return &cli.Command{
			Flags:  flags(),
			Action: RunMarkDiagram,
		}
	}

	err := command().Run(context.Background(), []string{
		"mark-diagram",
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--files", filepath.Join(t.TempDir(), "*.md"),
	})
	assert.Error(t, err)

	err = command().Run(context.Background(), []string{
		"mark-diagram",
		"--ci",
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--files", filepath.Join(t.TempDir(), "*.md"),
	})
	assert.NoError(t, err)
}
