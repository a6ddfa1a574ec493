package util

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kovetskiy/lorg"
	"github.com/kovetskiy/mark-diagram/document"
	"github.com/kovetskiy/mark-diagram/markdown"
	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/kovetskiy/mark-diagram/transformer"
	"github.com/kovetskiy/mark-diagram/types"
	"github.com/kovetskiy/mark-diagram/vfs"
	"github.com/reconquest/karma-go"
	"github.com/reconquest/pkg/log"
	"github.com/urfave/cli/v3"
)

const (
	InputMarkdown = "markdown"
	InputMdast    = "mdast"

	outputSuffix = ".mdast.json"
)

func RunMarkDiagram(ctx context.Context, cmd *cli.Command) error {
	if err := SetLogLevel(cmd); err != nil {
		return err
	}

	if cmd.String("color") == "never" {
		log.GetLogger().SetFormat(
			lorg.NewFormat(
				`${time:2006-01-02 15:04:05.000} ${level:%s:left:true} ${prefix}%s`,
			),
		)
		log.GetLogger().SetOutput(os.Stderr)
	}

	files, err := doublestar.FilepathGlob(cmd.String("files"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		const msg = "No files matched"
		if cmd.Bool("ci") {
			log.Warning(msg)
			return nil
		}
		return karma.Describe("files", cmd.String("files")).Format(nil, msg)
	}

	log.Debug("config:")
	for _, f := range cmd.Flags {
		flag := f.Names()
		log.Debugf(nil, "%20s: %v", flag[0], cmd.Value(flag[0]))
	}

	config := ConfigFromCommand(cmd)

	engines := NewEngines(config)
	defer engines.Close()

	invoker := renderer.NewInvoker(vfs.LocalOS)
	invoker.Timeout = config.RenderTimeout

	diagrams := transformer.New(transformer.Options{
		Engines:       engines.Renderers,
		Invoker:       invoker,
		FS:            vfs.LocalOS,
		OutputDir:     config.OutputDir,
		ReferenceType: mdast.ReferenceType(config.ReferenceType),
		FailFast:      config.FailFast,
	})
	defer diagrams.Close()

	parser := markdown.NewParser(config.Features)

	fatalErrorHandler := NewErrorHandler(cmd.Bool("continue-on-error"))

	// Loop through files matched by glob pattern
	for _, file := range files {
		log.Infof(
			nil,
			"processing %s",
			file,
		)

		output := processFile(ctx, file, cmd, parser, diagrams, fatalErrorHandler)
		if output != "" {
			log.Infof(nil, "diagrams rendered: %s", output)
		}
	}

	if failed := fatalErrorHandler.Failed(); len(failed) > 0 {
		log.Warningf(
			nil,
			"%d of %d files were not processed: %s",
			len(failed),
			len(files),
			strings.Join(failed, ", "),
		)
	}

	return nil
}

// processFile transforms file and writes the resulting tree. It returns the
// output location, or an empty string when the file was not processed.
func processFile(
	ctx context.Context,
	file string,
	cmd *cli.Command,
	parser *markdown.Parser,
	diagrams *transformer.Transformer,
	fatalErrorHandler *FatalErrorHandler,
) string {
	source, err := os.ReadFile(file)
	if err != nil {
		fatalErrorHandler.Handle(file, err, "unable to read file %q", file)
		return ""
	}

	source = bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))

	tree, err := parseInput(source, cmd.String("input-format"), parser)
	if err != nil {
		fatalErrorHandler.Handle(file, err, "unable to parse file %q", file)
		return ""
	}

	doc := document.New(file)

	root, err := diagrams.Transform(ctx, tree, doc)
	if err != nil {
		fatalErrorHandler.Handle(file, err, "unable to render diagrams of file %q", file)
		return ""
	}

	for _, message := range doc.Messages() {
		log.Debugf(nil, "%s: %s", file, message)
	}

	for _, artifact := range doc.Attachments() {
		log.Infof(
			nil,
			"%s: diagram %q written to %s (%d bytes, checksum %s)",
			file,
			artifact.Name,
			artifact.Path,
			len(artifact.FileBytes),
			artifact.Checksum,
		)
	}

	if doc.HasWarnings() {
		log.Warningf(
			nil,
			"%s: some diagrams were left as code blocks, see warnings above",
			file,
		)
	}

	data, err := mdast.MarshalIndent(root, "", "  ")
	if err != nil {
		fatalErrorHandler.Handle(file, err, "unable to encode mdast of file %q", file)
		return ""
	}

	output := OutputPath(file, cmd.String("output"))
	if output == "-" {
		fmt.Fprintln(cmd.Root().Writer, string(data))
		return output
	}

	err = writeOutput(output, data)
	if err != nil {
		fatalErrorHandler.Handle(file, err, "unable to write result of file %q", file)
		return ""
	}

	return output
}

func parseInput(source []byte, format string, parser *markdown.Parser) (mdast.Node, error) {
	switch format {
	case InputMarkdown, "":
		return parser.Parse(source)
	case InputMdast:
		return mdast.Unmarshal(source)
	default:
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
}

// OutputPath returns where the tree of file is written: next to file when
// output is empty, inside the output directory otherwise, or "-" for stdout.
func OutputPath(file string, output string) string {
	if output == "-" {
		return output
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + outputSuffix
	if output == "" {
		return filepath.Join(filepath.Dir(file), name)
	}

	return filepath.Join(output, name)
}

func writeOutput(path string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return karma.Format(err, "unable to create directory for %q", path)
	}

	err = os.WriteFile(path, append(data, '\n'), 0o644)
	if err != nil {
		return karma.Format(err, "unable to write %q", path)
	}

	return nil
}

// ConfigFromCommand collects the diagram settings of a command line.
func ConfigFromCommand(cmd *cli.Command) types.DiagramConfig {
	return types.DiagramConfig{
		Features:       cmd.StringSlice("features"),
		MermaidMarker:  cmd.String("mermaid-marker"),
		D2Marker:       cmd.String("d2-marker"),
		GraphvizMarker: cmd.String("graphviz-marker"),
		MermaidScale:   cmd.Float("mermaid-scale"),
		D2Scale:        cmd.Float("d2-scale"),
		D2Layout:       cmd.String("d2-layout"),
		GraphvizLayout: cmd.String("graphviz-layout"),
		NoSandbox:      cmd.Bool("no-sandbox"),
		ChromePath:     cmd.String("chrome-path"),
		ReferenceType:  cmd.String("reference-type"),
		OutputDir:      cmd.String("output-dir"),
		FailFast:       cmd.Bool("fail-fast"),
		RenderTimeout:  cmd.Duration("render-timeout"),
		CacheTTL:       cmd.Duration("cache-ttl"),
	}
}

// CheckFlags rejects option values the run could not honor.
func CheckFlags(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	referenceTypes := []string{
		string(mdast.ReferenceFull),
		string(mdast.ReferenceCollapsed),
		string(mdast.ReferenceShortcut),
	}
	if cmd.IsSet("reference-type") && !slices.Contains(referenceTypes, cmd.String("reference-type")) {
		return ctx, fmt.Errorf("unknown reference type: %s", cmd.String("reference-type"))
	}

	if cmd.IsSet("input-format") && !slices.Contains([]string{InputMarkdown, InputMdast}, cmd.String("input-format")) {
		return ctx, fmt.Errorf("unknown input format: %s", cmd.String("input-format"))
	}

	for _, feature := range cmd.StringSlice("features") {
		if !slices.Contains(Features, feature) {
			return ctx, fmt.Errorf("unknown feature: %s", feature)
		}
	}

	engines := []string{FeatureMermaid, FeatureD2, FeatureGraphviz}
	if !slices.ContainsFunc(cmd.StringSlice("features"), func(feature string) bool {
		return slices.Contains(engines, feature)
	}) {
		return ctx, fmt.Errorf("no diagram engine enabled, --features needs one of: %s", strings.Join(engines, ", "))
	}

	markers := map[string]string{}
	for _, flag := range []string{"mermaid-marker", "d2-marker", "graphviz-marker"} {
		marker := cmd.String(flag)
		if other, ok := markers[marker]; ok {
			return ctx, fmt.Errorf("--%s and --%s use the same marker: %s", other, flag, marker)
		}
		markers[marker] = flag
	}

	return ctx, nil
}

func ConfigFilePath() string {
	fp, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(fp, "mark-diagram.toml")
}

func SetLogLevel(cmd *cli.Command) error {
	logLevel := cmd.String("log-level")
	switch strings.ToUpper(logLevel) {
	case lorg.LevelTrace.String():
		log.SetLevel(lorg.LevelTrace)
	case lorg.LevelDebug.String():
		log.SetLevel(lorg.LevelDebug)
	case lorg.LevelInfo.String():
		log.SetLevel(lorg.LevelInfo)
	case lorg.LevelWarning.String():
		log.SetLevel(lorg.LevelWarning)
	case lorg.LevelError.String():
		log.SetLevel(lorg.LevelError)
	case lorg.LevelFatal.String():
		log.SetLevel(lorg.LevelFatal)
	default:
		return fmt.Errorf("unknown log level: %s", logLevel)
	}
	log.GetLevel()

	return nil
}
