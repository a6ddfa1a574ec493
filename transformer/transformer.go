package transformer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kovetskiy/mark-diagram/attachment"
	"github.com/kovetskiy/mark-diagram/document"
	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/kovetskiy/mark-diagram/mermaid"
	"github.com/kovetskiy/mark-diagram/metadata"
	"github.com/kovetskiy/mark-diagram/renderer"
	"github.com/kovetskiy/mark-diagram/vfs"
	"github.com/reconquest/pkg/log"
	"golang.org/x/sync/errgroup"
)

const Source = "mark-diagram"

// ErrStructure is returned when the transformer is given, or would produce,
// a tree of the wrong shape.
var ErrStructure = errors.New("structural violation")

type Options struct {
	// Engines maps a diagram marker, the code block language, to the engine
	// rendering it. When nil, a mermaid engine is created on demand; an
	// empty map renders nothing.
	Engines map[string]renderer.Engine

	// Browser configures the browser of the default mermaid engine.
	Browser renderer.Browser

	Invoker *renderer.Invoker
	FS      vfs.FileSystem

	// OutputDir redirects rendered images. Relative values resolve against
	// the document directory.
	OutputDir string

	ReferenceType mdast.ReferenceType

	// FailFast makes the first render failure abort the document instead of
	// being reported as a warning.
	FailFast bool
}

// Transformer replaces diagram code blocks with references to rendered
// images.
type Transformer struct {
	options Options
	owned   *mermaid.Engine
}

func New(options Options) *Transformer {
	transformer := &Transformer{}

	if options.FS == nil {
		options.FS = vfs.LocalOS
	}

	if options.Invoker == nil {
		options.Invoker = renderer.NewInvoker(options.FS)
	}

	if options.ReferenceType == "" {
		options.ReferenceType = mdast.ReferenceFull
	}

	if options.Engines == nil {
		transformer.owned = mermaid.New(mermaid.Options{Browser: options.Browser})
		options.Engines = map[string]renderer.Engine{
			mermaid.Name: transformer.owned,
		}
	}

	transformer.options = options

	return transformer
}

// Close releases the engine the transformer created for itself. Engines
// passed through Options belong to the caller.
func (transformer *Transformer) Close() {
	if transformer.owned != nil {
		transformer.owned.Close()
	}
}

// Transform rewrites tree, which must be a Root. file describes the
// document the tree was parsed from; diagnostics are reported on it.
func (transformer *Transformer) Transform(
	ctx context.Context,
	tree mdast.Node,
	file *document.File,
) (*mdast.Root, error) {
	if _, ok := tree.(*mdast.Root); !ok {
		return nil, fmt.Errorf(
			"%w: transform invoked on %s node",
			ErrStructure, typeOf(tree),
		)
	}

	nodes, err := transformer.transform(ctx, tree, file)
	if err != nil {
		return nil, err
	}

	if len(nodes) != 1 {
		return nil, fmt.Errorf(
			"%w: root transformed into %d nodes",
			ErrStructure, len(nodes),
		)
	}

	root, ok := nodes[0].(*mdast.Root)
	if !ok {
		return nil, fmt.Errorf(
			"%w: root transformed into %s node",
			ErrStructure, typeOf(nodes[0]),
		)
	}

	err = mdast.Validate(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStructure, err)
	}

	return root, nil
}

func (transformer *Transformer) transform(
	ctx context.Context,
	node mdast.Node,
	file *document.File,
) ([]mdast.Node, error) {
	if parent, ok := node.(mdast.Parent); ok {
		children := parent.ChildNodes()
		results := make([][]mdast.Node, len(children))

		group, groupCtx := errgroup.WithContext(ctx)
		for i, child := range children {
			group.Go(func() error {
				nodes, err := transformer.transform(groupCtx, child, file)
				if err != nil {
					return err
				}

				results[i] = nodes

				return nil
			})
		}

		err := group.Wait()
		if err != nil {
			return nil, err
		}

		if flattened, changed := flatten(children, results); changed {
			node = parent.WithChildren(flattened)
		}
	}

	switch node := node.(type) {
	case *mdast.Code:
		return transformer.transformCode(ctx, node, file)
	case *mdast.Image:
		return transformer.transformImage(ctx, node, file)
	default:
		return []mdast.Node{node}, nil
	}
}

// flatten joins per-child results in source order. changed is false when
// every child came back as itself.
func flatten(children []mdast.Node, results [][]mdast.Node) ([]mdast.Node, bool) {
	changed := false
	size := 0
	for i, result := range results {
		size += len(result)
		if len(result) != 1 || result[0] != children[i] {
			changed = true
		}
	}

	if !changed {
		return children, false
	}

	flattened := make([]mdast.Node, 0, size)
	for _, result := range results {
		flattened = append(flattened, result...)
	}

	return flattened, true
}

func (transformer *Transformer) transformCode(
	ctx context.Context,
	code *mdast.Code,
	file *document.File,
) ([]mdast.Node, error) {
	engine, ok := transformer.options.Engines[code.Lang]
	if !ok {
		return []mdast.Node{code}, nil
	}

	source := Source + ":" + code.Lang

	result := metadata.Extract(code.Meta)
	meta, ok := result.(metadata.Meta)
	if !ok {
		skip("block", code.Lang, result.(metadata.Incomplete))
		return []mdast.Node{code}, nil
	}

	artifact, err := transformer.options.Invoker.Invoke(
		ctx,
		engine,
		meta.Name,
		[]byte(code.Value),
		transformer.outputDir(file),
		meta.File,
	)
	if err != nil {
		return transformer.fail(
			ctx, err, code, file, source,
			fmt.Sprintf("unable to render %s diagram %q", code.Lang, meta.Name),
		)
	}

	url := relativeURL(file.Dir(), artifact.Path)
	reference, definition := Rewrite(meta, url, transformer.options.ReferenceType)

	file.Attach(artifact)
	file.Info(
		fmt.Sprintf("replaced %s diagram %q with %s", code.Lang, meta.Name, url),
		code.Position,
		source,
	)

	return []mdast.Node{reference, definition}, nil
}

func skip(kind string, marker string, incomplete metadata.Incomplete) {
	log.Infof(
		nil,
		"%s %s without %s is left as is (annotation keys: %s)",
		marker,
		kind,
		strings.Join(incomplete.Missing, ", "),
		strings.Join(incomplete.Fields.Keys(), ", "),
	)
}

// transformImage handles images titled "<marker> file=... name=...": the
// image URL names the diagram source, the image is pointed at the rendered
// result instead.
func (transformer *Transformer) transformImage(
	ctx context.Context,
	image *mdast.Image,
	file *document.File,
) ([]mdast.Node, error) {
	marker, annotation := metadata.SplitTitle(image.Title)

	engine, ok := transformer.options.Engines[marker]
	if marker == "" || !ok {
		return []mdast.Node{image}, nil
	}

	source := Source + ":" + marker

	result := metadata.Extract(annotation)
	meta, ok := result.(metadata.Meta)
	if !ok {
		skip("image", marker, result.(metadata.Incomplete))
		return []mdast.Node{image}, nil
	}

	reason := fmt.Sprintf("unable to render %s diagram %q", marker, meta.Name)

	diagram, err := attachment.Load(transformer.options.FS, file.Dir(), image.URL)
	if err != nil {
		err = &renderer.IOError{Op: "read", Path: image.URL, Err: err}
		return transformer.fail(ctx, err, image, file, source, reason)
	}

	artifact, err := transformer.options.Invoker.Invoke(
		ctx,
		engine,
		meta.Name,
		diagram,
		transformer.outputDir(file),
		meta.File,
	)
	if err != nil {
		return transformer.fail(ctx, err, image, file, source, reason)
	}

	url := relativeURL(file.Dir(), artifact.Path)

	alt := meta.Alt
	if !meta.HasAlt {
		alt = image.Alt
		if alt == "" {
			alt = meta.Name
		}
	}

	file.Attach(artifact)
	file.Info(
		fmt.Sprintf("replaced %s diagram %q with %s", marker, meta.Name, url),
		image.Position,
		source,
	)

	return []mdast.Node{
		&mdast.Image{
			URL:      url,
			Title:    meta.Alt,
			Alt:      alt,
			Position: image.Position,
		},
	}, nil
}

// fail keeps node in place and reports err on the document, unless the
// pass was canceled or FailFast is set.
func (transformer *Transformer) fail(
	ctx context.Context,
	err error,
	node mdast.Node,
	file *document.File,
	source string,
	reason string,
) ([]mdast.Node, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if transformer.options.FailFast {
		return nil, fmt.Errorf("%s: %w", reason, err)
	}

	file.Warn(err, reason, node.Pos(), source)

	return []mdast.Node{node}, nil
}

func (transformer *Transformer) outputDir(file *document.File) string {
	dir := transformer.options.OutputDir
	if dir == "" {
		return file.Dir()
	}

	if !filepath.IsAbs(dir) {
		return filepath.Join(file.Dir(), dir)
	}

	return dir
}

// relativeURL returns target relative to base with forward slashes, or
// target itself when no relative path exists.
func relativeURL(base, target string) string {
	absolute, err := filepath.Abs(base)
	if err != nil {
		return filepath.ToSlash(target)
	}

	relative, err := filepath.Rel(absolute, target)
	if err != nil {
		return filepath.ToSlash(target)
	}

	return filepath.ToSlash(relative)
}

func typeOf(node mdast.Node) string {
	if node == nil {
		return "nil"
	}
	return node.Type()
}
