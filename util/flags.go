package util

import (
	"github.com/kovetskiy/mark-diagram/renderer"
	altsrc "github.com/urfave/cli-altsrc/v3"
	altsrctoml "github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var filename string

var Flags = flags()

// flags builds a fresh flag set; cli flags keep parsed state between runs.
func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      "files",
			Aliases:   []string{"f"},
			Value:     "",
			Usage:     "use specified markdown file(s) for rendering diagrams. Supports file globbing patterns (needs to be quoted).",
			TakesFile: true,
			Sources:   cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_FILES"), altsrctoml.TOML("files", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "",
			Usage:   "directory for the resulting mdast JSON files, or - for stdout. By default every result is written next to its input as <name>.mdast.json.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_OUTPUT"), altsrctoml.TOML("output", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "input-format",
			Value:   InputMarkdown,
			Usage:   "format of the input files. Possible values: markdown, mdast.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_INPUT_FORMAT"), altsrctoml.TOML("input-format", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:      "output-dir",
			Value:     "",
			Usage:     "write rendered images to this directory instead of next to the document. Relative paths resolve against the document directory.",
			TakesFile: true,
			Sources:   cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_OUTPUT_DIR"), altsrctoml.TOML("output-dir", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.BoolFlag{
			Name:    "continue-on-error",
			Value:   false,
			Usage:   "don't exit if an error occurs while processing a file, continue processing remaining files.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_CONTINUE_ON_ERROR"), altsrctoml.TOML("continue-on-error", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.BoolFlag{
			Name:    "fail-fast",
			Value:   false,
			Usage:   "treat a diagram that fails to render as an error instead of leaving the code block in place.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_FAIL_FAST"), altsrctoml.TOML("fail-fast", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "reference-type",
			Value:   "full",
			Usage:   "style of the generated image references. Possible values: full, collapsed, shortcut.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_REFERENCE_TYPE"), altsrctoml.TOML("reference-type", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "mermaid-marker",
			Value:   "mermaid",
			Usage:   "code block language rendered by the mermaid engine.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_MERMAID_MARKER"), altsrctoml.TOML("mermaid-marker", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "d2-marker",
			Value:   "d2",
			Usage:   "code block language rendered by the d2 engine.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_D2_MARKER"), altsrctoml.TOML("d2-marker", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "graphviz-marker",
			Value:   "dot",
			Usage:   "code block language rendered by the graphviz engine.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_GRAPHVIZ_MARKER"), altsrctoml.TOML("graphviz-marker", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.FloatFlag{
			Name:    "mermaid-scale",
			Value:   1.0,
			Usage:   "defines the scaling factor for mermaid PNG renderings.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_MERMAID_SCALE"), altsrctoml.TOML("mermaid-scale", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.FloatFlag{
			Name:    "d2-scale",
			Value:   1.0,
			Usage:   "defines the scaling factor for d2 PNG renderings.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_D2_SCALE"), altsrctoml.TOML("d2-scale", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "d2-layout",
			Value:   "dagre",
			Usage:   "default d2 layout engine. Possible values: dagre, elk.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_D2_LAYOUT"), altsrctoml.TOML("d2-layout", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "graphviz-layout",
			Value:   "dot",
			Usage:   "graphviz layout engine, e.g. dot, neato, circo.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_GRAPHVIZ_LAYOUT"), altsrctoml.TOML("graphviz-layout", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.BoolFlag{
			Name:    "no-sandbox",
			Value:   false,
			Usage:   "launch the headless browser without sandbox, required in most containers.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_NO_SANDBOX"), altsrctoml.TOML("no-sandbox", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:      "chrome-path",
			Value:     "",
			Usage:     "path to the Chrome executable used for mermaid and PNG renderings.",
			TakesFile: true,
			Sources:   cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_CHROME_PATH"), altsrctoml.TOML("chrome-path", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.DurationFlag{
			Name:    "render-timeout",
			Value:   renderer.DefaultTimeout,
			Usage:   "deadline for a single diagram render, 0 disables it.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_RENDER_TIMEOUT"), altsrctoml.TOML("render-timeout", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Value:   renderer.DefaultCacheTTL,
			Usage:   "how long identical diagrams are served from the render cache, 0 disables the cache.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_CACHE_TTL"), altsrctoml.TOML("cache-ttl", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:  "color",
			Value: "auto",
			Usage: "display logs in color. Possible values: auto, never.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_COLOR"),
				altsrctoml.TOML("color", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "set the log level. Possible values: TRACE, DEBUG, INFO, WARNING, ERROR, FATAL.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_LOG_LEVEL"), altsrctoml.TOML("log-level", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       ConfigFilePath(),
			Usage:       "use the specified configuration file.",
			TakesFile:   true,
			Sources:     cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_CONFIG")),
			Destination: &filename,
		},
		&cli.BoolFlag{
			Name:    "ci",
			Value:   false,
			Usage:   "run on CI mode. It won't fail if files are not found.",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_CI"), altsrctoml.TOML("ci", altsrc.NewStringPtrSourcer(&filename))),
		},
		&cli.StringSliceFlag{
			Name:    "features",
			Value:   []string{"mermaid"},
			Usage:   "Enables optional features. Current features: mermaid, d2, graphviz, mkdocsadmonitions, ghalerts",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MARK_DIAGRAM_FEATURES"), altsrctoml.TOML("features", altsrc.NewStringPtrSourcer(&filename))),
		},
	}
}
