// Package markdown parses Markdown documents into mdast trees.
package markdown

import (
	"slices"

	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/reconquest/pkg/log"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	FeatureMkDocsAdmonitions = "mkdocsadmonitions"
	FeatureGHAlerts          = "ghalerts"
)

// Parser converts Markdown sources into mdast trees. A Parser is safe for
// concurrent use.
type Parser struct {
	markdown goldmark.Markdown
}

// NewParser builds a parser with GitHub flavored Markdown and footnotes.
// features may enable mkdocs admonitions and GitHub alerts, both of which
// become container directives.
func NewParser(features []string) *Parser {
	converter := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
	)

	if slices.Contains(features, FeatureMkDocsAdmonitions) {
		converter.Parser().AddOptions(
			parser.WithBlockParsers(
				util.Prioritized(admonitions.NewAdmonitionParser(), 100),
			),
		)
	}

	if slices.Contains(features, FeatureGHAlerts) {
		converter.Parser().AddOptions(
			parser.WithASTTransformers(
				util.Prioritized(NewGHAlertsTransformer(), 100),
			),
		)
	}

	return &Parser{markdown: converter}
}

// Parse parses source into a tree. Front matter, when present, must be valid
// YAML and is kept as the first child of the root.
func (p *Parser) Parse(source []byte) (*mdast.Root, error) {
	log.Tracef(nil, "parsing markdown:\n%s", string(source))

	matter, end, err := splitFrontMatter(source)
	if err != nil {
		return nil, err
	}

	body := source
	if matter != nil {
		body = blankOut(source, end)
	}

	context := parser.NewContext()
	document := p.markdown.Parser().Parse(text.NewReader(body), parser.WithContext(context))

	converter := newConverter(source)
	root := converter.convertDocument(document, context.References())

	if matter != nil {
		matter.Position = converter.span(0, end)
		root.Children = append([]mdast.Node{matter}, root.Children...)
	}

	return root, nil
}

// Parse parses source with a parser enabling features.
func Parse(source []byte, features []string) (*mdast.Root, error) {
	return NewParser(features).Parse(source)
}
