package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const ghAlertAttribute = "gh-alert-type"

// GHAlertsTransformer marks blockquotes written in GitHub alert syntax
// ("> [!NOTE]") with their alert type and strips the marker, so that they
// convert into container directives.
type GHAlertsTransformer struct{}

func NewGHAlertsTransformer() *GHAlertsTransformer {
	return &GHAlertsTransformer{}
}

// Transform implements parser.ASTTransformer.
func (t *GHAlertsTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var alerts []*ast.Blockquote

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		blockquote, ok := node.(*ast.Blockquote)
		if !ok {
			return ast.WalkContinue, nil
		}

		alertType := t.extractAlertType(blockquote, reader.Source())
		if alertType == "" {
			return ast.WalkContinue, nil
		}

		blockquote.SetAttributeString(ghAlertAttribute, []byte(alertType))
		alerts = append(alerts, blockquote)

		return ast.WalkContinue, nil
	})

	// the tree must not change while it is walked
	for _, blockquote := range alerts {
		t.removeAlertSyntax(blockquote)
	}
}

// markerNodes returns the "[", "!TYPE", "]" text nodes opening the first
// paragraph of blockquote.
func markerNodes(blockquote *ast.Blockquote) []*ast.Text {
	paragraph, ok := blockquote.FirstChild().(*ast.Paragraph)
	if !ok {
		return nil
	}

	var nodes []*ast.Text
	for node := paragraph.FirstChild(); node != nil && len(nodes) < 3; node = node.NextSibling() {
		text, ok := node.(*ast.Text)
		if !ok {
			return nil
		}
		nodes = append(nodes, text)
	}

	if len(nodes) < 3 {
		return nil
	}

	return nodes
}

func (t *GHAlertsTransformer) extractAlertType(blockquote *ast.Blockquote, source []byte) string {
	nodes := markerNodes(blockquote)
	if nodes == nil {
		return ""
	}

	left := string(nodes[0].Segment.Value(source))
	middle := string(nodes[1].Segment.Value(source))
	right := string(nodes[2].Segment.Value(source))

	if left != "[" || right != "]" || !strings.HasPrefix(middle, "!") {
		return ""
	}

	alertType := strings.ToLower(strings.TrimPrefix(middle, "!"))
	switch alertType {
	case "note", "tip", "important", "warning", "caution":
		return alertType
	}

	return ""
}

func (t *GHAlertsTransformer) removeAlertSyntax(blockquote *ast.Blockquote) {
	paragraph := blockquote.FirstChild()

	for _, node := range markerNodes(blockquote) {
		paragraph.RemoveChild(paragraph, node)
	}

	if paragraph.ChildCount() == 0 {
		blockquote.RemoveChild(blockquote, paragraph)
	}
}
