package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/kovetskiy/mark-diagram/metadata"
	"github.com/reconquest/pkg/log"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// converter maps goldmark nodes onto mdast nodes. Offsets are resolved
// against the original source, including front matter.
type converter struct {
	source    []byte
	lines     []int
	footnotes map[int]string
}

func newConverter(source []byte) *converter {
	lines := []int{0}
	for i, c := range source {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}

	return &converter{
		source:    source,
		lines:     lines,
		footnotes: map[int]string{},
	}
}

func (c *converter) point(offset int) mdast.Point {
	if offset > len(c.source) {
		offset = len(c.source)
	}

	line := sort.Search(len(c.lines), func(i int) bool {
		return c.lines[i] > offset
	}) - 1

	return mdast.Point{
		Line:   line + 1,
		Column: offset - c.lines[line] + 1,
		Offset: offset,
	}
}

// span returns the position of source[start:stop], not counting trailing
// line endings.
func (c *converter) span(start, stop int) *mdast.Position {
	for stop > start && (c.source[stop-1] == '\n' || c.source[stop-1] == '\r') {
		stop--
	}

	return &mdast.Position{
		Start: c.point(start),
		End:   c.point(stop),
	}
}

func (c *converter) lineStart(offset int) int {
	for offset > 0 && c.source[offset-1] != '\n' {
		offset--
	}
	return offset
}

func (c *converter) lineEnd(offset int) int {
	for offset < len(c.source) && c.source[offset] != '\n' {
		offset++
	}
	return offset
}

func (c *converter) lineSpan(node ast.Node) *mdast.Position {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return nil
	}

	return c.span(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
}

// around spans from the first to the last positioned child.
func around(children []mdast.Node) *mdast.Position {
	var position *mdast.Position
	for _, child := range children {
		pos := child.Pos()
		if pos == nil {
			continue
		}

		if position == nil {
			position = &mdast.Position{Start: pos.Start, End: pos.End}
			continue
		}

		position.End = pos.End
	}

	return position
}

func (c *converter) value(lines *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(c.source))
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

func (c *converter) convertDocument(document ast.Node, references []parser.Reference) *mdast.Root {
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if footnote, ok := node.(*east.Footnote); ok && entering {
			c.footnotes[footnote.Index] = string(footnote.Ref)
		}
		return ast.WalkContinue, nil
	})

	root := &mdast.Root{
		Children: c.children(document),
		Position: c.span(0, len(c.source)),
	}

	sort.Slice(references, func(i, j int) bool {
		return bytes.Compare(references[i].Label(), references[j].Label()) < 0
	})

	for _, reference := range references {
		label := string(reference.Label())
		root.Children = append(root.Children, &mdast.Definition{
			Identifier: strings.ToLower(label),
			Label:      label,
			URL:        string(reference.Destination()),
			Title:      string(reference.Title()),
		})
	}

	return root
}

func (c *converter) children(node ast.Node) []mdast.Node {
	children := []mdast.Node{}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		children = append(children, c.convert(child)...)
	}

	return mergeText(children)
}

// convert returns the mdast nodes standing for node: usually one, none for
// nodes mdast has no counterpart for, several for flattened containers.
func (c *converter) convert(node ast.Node) []mdast.Node {
	switch node := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		children := c.children(node)
		if len(children) == 0 {
			return nil
		}
		return one(&mdast.Paragraph{Children: children, Position: around(children)})

	case *ast.Heading:
		children := c.children(node)
		position := c.lineSpan(node)
		if position != nil {
			position.Start = c.point(c.lineStart(position.Start.Offset))
		}
		return one(&mdast.Heading{
			Depth:    node.Level,
			Children: children,
			Position: position,
		})

	case *ast.ThematicBreak:
		return one(&mdast.ThematicBreak{})

	case *ast.Blockquote:
		children := c.children(node)
		if alert, ok := node.AttributeString(ghAlertAttribute); ok {
			if name, ok := alert.([]byte); ok {
				return one(&mdast.ContainerDirective{
					Name:     string(name),
					Children: children,
					Position: around(children),
				})
			}
		}
		return one(&mdast.Blockquote{Children: children, Position: around(children)})

	case *ast.List:
		list := &mdast.List{
			Ordered: node.IsOrdered(),
			Spread:  !node.IsTight,
		}
		if node.IsOrdered() {
			start := node.Start
			list.Start = &start
		}
		list.Children = c.children(node)
		list.Position = around(list.Children)
		return one(list)

	case *ast.ListItem:
		item := &mdast.ListItem{}
		if list, ok := node.Parent().(*ast.List); ok {
			item.Spread = !list.IsTight
		}
		if checkbox := getTaskCheckBox(node); checkbox != nil {
			checked := checkbox.IsChecked
			item.Checked = &checked
		}
		item.Children = c.children(node)
		item.Position = around(item.Children)
		return one(item)

	case *east.TaskCheckBox:
		return nil

	case *ast.FencedCodeBlock:
		return one(c.fencedCode(node))

	case *ast.CodeBlock:
		return one(&mdast.Code{Value: c.value(node.Lines()), Position: c.lineSpan(node)})

	case *ast.HTMLBlock:
		value := c.value(node.Lines())
		if node.HasClosure() {
			if value != "" {
				value += "\n"
			}
			value += strings.TrimSuffix(string(node.ClosureLine.Value(c.source)), "\n")
		}
		return one(&mdast.HTML{Value: value, Position: c.lineSpan(node)})

	case *ast.Text:
		nodes := []mdast.Node{
			&mdast.Text{
				Value:    string(node.Segment.Value(c.source)),
				Position: c.span(node.Segment.Start, node.Segment.Stop),
			},
		}
		switch {
		case node.HardLineBreak():
			nodes = append(nodes, &mdast.Break{})
		case node.SoftLineBreak():
			nodes[0].(*mdast.Text).Value += "\n"
		}
		return nodes

	case *ast.String:
		return one(&mdast.Text{Value: string(node.Value)})

	case *ast.Emphasis:
		children := c.children(node)
		if node.Level >= 2 {
			return one(&mdast.Strong{Children: children, Position: around(children)})
		}
		return one(&mdast.Emphasis{Children: children, Position: around(children)})

	case *east.Strikethrough:
		children := c.children(node)
		return one(&mdast.Delete{Children: children, Position: around(children)})

	case *ast.CodeSpan:
		children := c.children(node)
		return one(&mdast.InlineCode{
			Value:    mdast.ToString(&mdast.Paragraph{Children: children}),
			Position: around(children),
		})

	case *ast.Link:
		children := c.children(node)
		return one(&mdast.Link{
			URL:      string(node.Destination),
			Title:    string(node.Title),
			Children: children,
			Position: around(children),
		})

	case *ast.AutoLink:
		label := &mdast.Text{Value: string(node.Label(c.source))}
		return one(&mdast.Link{URL: string(node.URL(c.source)), Children: []mdast.Node{label}})

	case *ast.Image:
		children := c.children(node)
		return one(&mdast.Image{
			URL:      string(node.Destination),
			Title:    string(node.Title),
			Alt:      mdast.ToString(&mdast.Paragraph{Children: children}),
			Position: around(children),
		})

	case *ast.RawHTML:
		return one(&mdast.HTML{Value: c.value(node.Segments)})

	case *east.Table:
		table := &mdast.Table{}
		for _, alignment := range node.Alignments {
			table.Align = append(table.Align, align(alignment))
		}
		table.Children = c.children(node)
		table.Position = around(table.Children)
		return one(table)

	case *east.TableHeader, *east.TableRow:
		children := c.children(node)
		return one(&mdast.TableRow{Children: children, Position: around(children)})

	case *east.TableCell:
		children := c.children(node)
		return one(&mdast.TableCell{Children: children, Position: around(children)})

	case *east.FootnoteList:
		return c.children(node)

	case *east.Footnote:
		label := string(node.Ref)
		children := c.children(node)
		return one(&mdast.FootnoteDefinition{
			Identifier: strings.ToLower(label),
			Label:      label,
			Children:   children,
			Position:   around(children),
		})

	case *east.FootnoteLink:
		label := c.footnotes[node.Index]
		return one(&mdast.FootnoteReference{
			Identifier: strings.ToLower(label),
			Label:      label,
		})

	case *east.FootnoteBacklink:
		return nil

	case *admonitions.Admonition:
		directive := &mdast.ContainerDirective{
			Name:     string(node.AdmonitionClass),
			Children: c.children(node),
		}
		if title := strings.TrimSpace(string(node.Title)); title != "" {
			directive.Attributes = map[string]string{"title": title}
		}
		directive.Position = around(directive.Children)
		return one(directive)
	}

	log.Tracef(nil, "markdown: skipping unsupported %s node", node.Kind())

	return nil
}

func (c *converter) fencedCode(node *ast.FencedCodeBlock) *mdast.Code {
	code := &mdast.Code{Value: c.value(node.Lines())}

	start, stop := -1, -1
	if node.Info != nil {
		code.Lang, code.Meta = metadata.CutWord(string(node.Info.Segment.Value(c.source)))

		start = c.lineStart(node.Info.Segment.Start)
		stop = c.lineEnd(node.Info.Segment.Stop)
	}

	if lines := node.Lines(); lines.Len() > 0 {
		if start < 0 {
			start = c.lineStart(lines.At(0).Start)
			if start > 0 {
				start = c.lineStart(start - 1)
			}
		}
		stop = lines.At(lines.Len() - 1).Stop
	}

	if start < 0 {
		return code
	}

	// closing fence
	if stop < len(c.source) {
		if c.source[stop] == '\n' {
			stop++
		}
		stop = c.lineEnd(stop)
	}

	code.Position = c.span(start, stop)

	return code
}

func align(alignment east.Alignment) mdast.AlignType {
	switch alignment {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignRight:
		return mdast.AlignRight
	case east.AlignCenter:
		return mdast.AlignCenter
	default:
		return mdast.AlignNone
	}
}

// getTaskCheckBox returns the checkbox of a task list item. The structure is
// ListItem -> TextBlock -> TaskCheckBox.
func getTaskCheckBox(item ast.Node) *east.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}

	checkbox, ok := first.FirstChild().(*east.TaskCheckBox)
	if !ok {
		return nil
	}

	return checkbox
}

// mergeText joins adjacent text nodes the way mdast producers do.
func mergeText(nodes []mdast.Node) []mdast.Node {
	merged := nodes[:0]
	for _, node := range nodes {
		text, ok := node.(*mdast.Text)
		if !ok || len(merged) == 0 {
			merged = append(merged, node)
			continue
		}

		previous, ok := merged[len(merged)-1].(*mdast.Text)
		if !ok {
			merged = append(merged, node)
			continue
		}

		joined := &mdast.Text{
			Value:    previous.Value + text.Value,
			Position: previous.Position,
		}
		if previous.Position != nil && text.Position != nil {
			joined.Position = &mdast.Position{
				Start: previous.Position.Start,
				End:   text.Position.End,
			}
		}

		merged[len(merged)-1] = joined
	}

	return merged
}

func one(node mdast.Node) []mdast.Node {
	return []mdast.Node{node}
}
