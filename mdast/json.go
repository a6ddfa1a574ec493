package mdast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/reconquest/karma-go"
	"github.com/tidwall/gjson"
)

// Marshal encodes the tree rooted at node as mdast JSON.
func Marshal(node Node) ([]byte, error) {
	return json.Marshal(node)
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(node Node, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(node, prefix, indent)
}

// withType encodes v and prepends the "type" discriminator to the object.
func withType(kind string, v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.WriteString(fmt.Sprintf("%q", kind))
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}

	return buf.Bytes(), nil
}

func nonNil(children []Node) []Node {
	if children == nil {
		return []Node{}
	}
	return children
}

func (n *Root) MarshalJSON() ([]byte, error) {
	type plain Root
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeRoot, &c)
}

func (n *Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeParagraph, &c)
}

func (n *Heading) MarshalJSON() ([]byte, error) {
	type plain Heading
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeHeading, &c)
}

func (n *ThematicBreak) MarshalJSON() ([]byte, error) {
	type plain ThematicBreak
	return withType(TypeThematicBreak, (*plain)(n))
}

func (n *Blockquote) MarshalJSON() ([]byte, error) {
	type plain Blockquote
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeBlockquote, &c)
}

func (n *List) MarshalJSON() ([]byte, error) {
	type plain List
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeList, &c)
}

func (n *ListItem) MarshalJSON() ([]byte, error) {
	type plain ListItem
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeListItem, &c)
}

func (n *HTML) MarshalJSON() ([]byte, error) {
	type plain HTML
	return withType(TypeHTML, (*plain)(n))
}

func (n *Code) MarshalJSON() ([]byte, error) {
	type plain Code
	return withType(TypeCode, (*plain)(n))
}

func (n *Definition) MarshalJSON() ([]byte, error) {
	type plain Definition
	return withType(TypeDefinition, (*plain)(n))
}

func (n *Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return withType(TypeText, (*plain)(n))
}

func (n *Emphasis) MarshalJSON() ([]byte, error) {
	type plain Emphasis
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeEmphasis, &c)
}

func (n *Strong) MarshalJSON() ([]byte, error) {
	type plain Strong
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeStrong, &c)
}

func (n *Delete) MarshalJSON() ([]byte, error) {
	type plain Delete
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeDelete, &c)
}

func (n *InlineCode) MarshalJSON() ([]byte, error) {
	type plain InlineCode
	return withType(TypeInlineCode, (*plain)(n))
}

func (n *Break) MarshalJSON() ([]byte, error) {
	type plain Break
	return withType(TypeBreak, (*plain)(n))
}

func (n *Link) MarshalJSON() ([]byte, error) {
	type plain Link
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeLink, &c)
}

func (n *Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return withType(TypeImage, (*plain)(n))
}

func (n *LinkReference) MarshalJSON() ([]byte, error) {
	type plain LinkReference
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeLinkReference, &c)
}

func (n *ImageReference) MarshalJSON() ([]byte, error) {
	type plain ImageReference
	return withType(TypeImageReference, (*plain)(n))
}

func (n *Table) MarshalJSON() ([]byte, error) {
	type plain Table
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeTable, &c)
}

func (n *TableRow) MarshalJSON() ([]byte, error) {
	type plain TableRow
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeTableRow, &c)
}

func (n *TableCell) MarshalJSON() ([]byte, error) {
	type plain TableCell
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeTableCell, &c)
}

func (n *FootnoteDefinition) MarshalJSON() ([]byte, error) {
	type plain FootnoteDefinition
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeFootnoteDefinition, &c)
}

func (n *FootnoteReference) MarshalJSON() ([]byte, error) {
	type plain FootnoteReference
	return withType(TypeFootnoteReference, (*plain)(n))
}

func (n *Yaml) MarshalJSON() ([]byte, error) {
	type plain Yaml
	return withType(TypeYaml, (*plain)(n))
}

func (n *ContainerDirective) MarshalJSON() ([]byte, error) {
	type plain ContainerDirective
	c := plain(*n)
	c.Children = nonNil(c.Children)
	return withType(TypeContainerDirective, &c)
}

// Unmarshal decodes mdast JSON, as produced by Marshal or by remark, into a
// tree of Nodes.
func Unmarshal(data []byte) (Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, karma.Format(nil, "invalid mdast json")
	}

	return decode(gjson.ParseBytes(data), "$")
}

func decode(value gjson.Result, path string) (Node, error) {
	if !value.IsObject() {
		return nil, karma.Describe("path", path).Format(nil, "node is not an object")
	}

	kind := value.Get("type").String()
	position := decodePosition(value.Get("position"))

	children := func() ([]Node, error) {
		nodes := []Node{}
		for i, child := range value.Get("children").Array() {
			node, err := decode(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	}
	str := func(key string) string {
		return value.Get(key).String()
	}

	switch kind {
	case TypeThematicBreak:
		return &ThematicBreak{Position: position}, nil
	case TypeBreak:
		return &Break{Position: position}, nil
	case TypeHTML:
		return &HTML{Value: str("value"), Position: position}, nil
	case TypeText:
		return &Text{Value: str("value"), Position: position}, nil
	case TypeInlineCode:
		return &InlineCode{Value: str("value"), Position: position}, nil
	case TypeYaml:
		return &Yaml{Value: str("value"), Position: position}, nil
	case TypeCode:
		return &Code{
			Lang:     str("lang"),
			Meta:     str("meta"),
			Value:    str("value"),
			Position: position,
		}, nil
	case TypeDefinition:
		return &Definition{
			Identifier: str("identifier"),
			Label:      str("label"),
			URL:        str("url"),
			Title:      str("title"),
			Position:   position,
		}, nil
	case TypeImage:
		return &Image{
			URL:      str("url"),
			Title:    str("title"),
			Alt:      str("alt"),
			Position: position,
		}, nil
	case TypeImageReference:
		return &ImageReference{
			Identifier:    str("identifier"),
			Label:         str("label"),
			ReferenceType: ReferenceType(str("referenceType")),
			Alt:           str("alt"),
			Position:      position,
		}, nil
	case TypeFootnoteReference:
		return &FootnoteReference{
			Identifier: str("identifier"),
			Label:      str("label"),
			Position:   position,
		}, nil
	}

	nodes, err := children()
	if err != nil {
		return nil, err
	}

	switch kind {
	case TypeRoot:
		return &Root{Children: nodes, Position: position}, nil
	case TypeParagraph:
		return &Paragraph{Children: nodes, Position: position}, nil
	case TypeHeading:
		return &Heading{
			Depth:    int(value.Get("depth").Int()),
			Children: nodes,
			Position: position,
		}, nil
	case TypeBlockquote:
		return &Blockquote{Children: nodes, Position: position}, nil
	case TypeList:
		list := &List{
			Ordered:  value.Get("ordered").Bool(),
			Spread:   value.Get("spread").Bool(),
			Children: nodes,
			Position: position,
		}
		if start := value.Get("start"); start.Exists() && start.Type == gjson.Number {
			n := int(start.Int())
			list.Start = &n
		}
		return list, nil
	case TypeListItem:
		item := &ListItem{
			Spread:   value.Get("spread").Bool(),
			Children: nodes,
			Position: position,
		}
		if checked := value.Get("checked"); checked.IsBool() {
			b := checked.Bool()
			item.Checked = &b
		}
		return item, nil
	case TypeEmphasis:
		return &Emphasis{Children: nodes, Position: position}, nil
	case TypeStrong:
		return &Strong{Children: nodes, Position: position}, nil
	case TypeDelete:
		return &Delete{Children: nodes, Position: position}, nil
	case TypeLink:
		return &Link{
			URL:      str("url"),
			Title:    str("title"),
			Children: nodes,
			Position: position,
		}, nil
	case TypeLinkReference:
		return &LinkReference{
			Identifier:    str("identifier"),
			Label:         str("label"),
			ReferenceType: ReferenceType(str("referenceType")),
			Children:      nodes,
			Position:      position,
		}, nil
	case TypeTable:
		table := &Table{Children: nodes, Position: position}
		for _, align := range value.Get("align").Array() {
			table.Align = append(table.Align, AlignType(align.String()))
		}
		return table, nil
	case TypeTableRow:
		return &TableRow{Children: nodes, Position: position}, nil
	case TypeTableCell:
		return &TableCell{Children: nodes, Position: position}, nil
	case TypeFootnoteDefinition:
		return &FootnoteDefinition{
			Identifier: str("identifier"),
			Label:      str("label"),
			Children:   nodes,
			Position:   position,
		}, nil
	case TypeContainerDirective:
		directive := &ContainerDirective{
			Name:     str("name"),
			Children: nodes,
			Position: position,
		}
		attributes := value.Get("attributes")
		if attributes.IsObject() {
			directive.Attributes = map[string]string{}
			attributes.ForEach(func(key, value gjson.Result) bool {
				directive.Attributes[key.String()] = value.String()
				return true
			})
		}
		return directive, nil
	}

	return nil, karma.Describe("path", path).Format(nil, "unknown node type: %q", kind)
}

func decodePosition(value gjson.Result) *Position {
	if !value.IsObject() {
		return nil
	}

	point := func(value gjson.Result) Point {
		return Point{
			Line:   int(value.Get("line").Int()),
			Column: int(value.Get("column").Int()),
			Offset: int(value.Get("offset").Int()),
		}
	}

	return &Position{
		Start: point(value.Get("start")),
		End:   point(value.Get("end")),
	}
}
