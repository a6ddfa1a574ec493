// Package mdast implements the Markdown syntax tree the diagram transformer
// operates on. Nodes follow the mdast vocabulary so that trees can be
// exchanged as JSON with unified/remark based tooling.
package mdast

// Node type tags.
const (
	TypeRoot               = "root"
	TypeParagraph          = "paragraph"
	TypeHeading            = "heading"
	TypeThematicBreak      = "thematicBreak"
	TypeBlockquote         = "blockquote"
	TypeList               = "list"
	TypeListItem           = "listItem"
	TypeHTML               = "html"
	TypeCode               = "code"
	TypeDefinition         = "definition"
	TypeText               = "text"
	TypeEmphasis           = "emphasis"
	TypeStrong             = "strong"
	TypeDelete             = "delete"
	TypeInlineCode         = "inlineCode"
	TypeBreak              = "break"
	TypeLink               = "link"
	TypeImage              = "image"
	TypeLinkReference      = "linkReference"
	TypeImageReference     = "imageReference"
	TypeTable              = "table"
	TypeTableRow           = "tableRow"
	TypeTableCell          = "tableCell"
	TypeFootnoteDefinition = "footnoteDefinition"
	TypeFootnoteReference  = "footnoteReference"
	TypeYaml               = "yaml"
	TypeContainerDirective = "containerDirective"
)

// ReferenceType tells how a reference node was (or will be) written.
type ReferenceType string

const (
	ReferenceFull      ReferenceType = "full"
	ReferenceCollapsed ReferenceType = "collapsed"
	ReferenceShortcut  ReferenceType = "shortcut"
)

// AlignType is the alignment of a table column.
type AlignType string

const (
	AlignNone   AlignType = ""
	AlignLeft   AlignType = "left"
	AlignRight  AlignType = "right"
	AlignCenter AlignType = "center"
)

type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Node is one of the variants declared in this package. The set is closed.
type Node interface {
	Type() string
	Pos() *Position
	node()
}

// Parent is a node owning an ordered list of children.
type Parent interface {
	Node
	ChildNodes() []Node
	// WithChildren returns a shallow copy of the node carrying children.
	WithChildren(children []Node) Parent
}

// Literal is a node carrying a text value instead of children.
type Literal interface {
	Node
	Text() string
}

type Root struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type Paragraph struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type Heading struct {
	Depth    int       `json:"depth"`
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type ThematicBreak struct {
	Position *Position `json:"position,omitempty"`
}

type Blockquote struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type List struct {
	Ordered  bool      `json:"ordered"`
	Start    *int      `json:"start,omitempty"`
	Spread   bool      `json:"spread"`
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type ListItem struct {
	Spread   bool      `json:"spread"`
	Checked  *bool     `json:"checked,omitempty"`
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type HTML struct {
	Value    string    `json:"value"`
	Position *Position `json:"position,omitempty"`
}

// Code is a fenced or indented code block. Lang is the first word of the
// info string, Meta the rest of it.
type Code struct {
	Lang     string    `json:"lang,omitempty"`
	Meta     string    `json:"meta,omitempty"`
	Value    string    `json:"value"`
	Position *Position `json:"position,omitempty"`
}

type Definition struct {
	Identifier string    `json:"identifier"`
	Label      string    `json:"label,omitempty"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Position   *Position `json:"position,omitempty"`
}

type Text struct {
	Value    string    `json:"value"`
	Position *Position `json:"position,omitempty"`
}

type Emphasis struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type Strong struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type Delete struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type InlineCode struct {
	Value    string    `json:"value"`
	Position *Position `json:"position,omitempty"`
}

type Break struct {
	Position *Position `json:"position,omitempty"`
}

type Link struct {
	URL      string    `json:"url"`
	Title    string    `json:"title,omitempty"`
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type Image struct {
	URL      string    `json:"url"`
	Title    string    `json:"title,omitempty"`
	Alt      string    `json:"alt,omitempty"`
	Position *Position `json:"position,omitempty"`
}

type LinkReference struct {
	Identifier    string        `json:"identifier"`
	Label         string        `json:"label,omitempty"`
	ReferenceType ReferenceType `json:"referenceType"`
	Children      []Node        `json:"children"`
	Position      *Position     `json:"position,omitempty"`
}

// ImageReference embeds the image whose Definition shares its Identifier.
type ImageReference struct {
	Identifier    string        `json:"identifier"`
	Label         string        `json:"label,omitempty"`
	ReferenceType ReferenceType `json:"referenceType"`
	Alt           string        `json:"alt,omitempty"`
	Position      *Position     `json:"position,omitempty"`
}

type Table struct {
	Align    []AlignType `json:"align,omitempty"`
	Children []Node      `json:"children"`
	Position *Position   `json:"position,omitempty"`
}

type TableRow struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type TableCell struct {
	Children []Node    `json:"children"`
	Position *Position `json:"position,omitempty"`
}

type FootnoteDefinition struct {
	Identifier string    `json:"identifier"`
	Label      string    `json:"label,omitempty"`
	Children   []Node    `json:"children"`
	Position   *Position `json:"position,omitempty"`
}

type FootnoteReference struct {
	Identifier string    `json:"identifier"`
	Label      string    `json:"label,omitempty"`
	Position   *Position `json:"position,omitempty"`
}

// Yaml holds the raw front matter of a document.
type Yaml struct {
	Value    string    `json:"value"`
	Position *Position `json:"position,omitempty"`
}

// ContainerDirective is a named block container, used for admonitions.
type ContainerDirective struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []Node            `json:"children"`
	Position   *Position         `json:"position,omitempty"`
}

func (*Root) Type() string               { return TypeRoot }
func (*Paragraph) Type() string          { return TypeParagraph }
func (*Heading) Type() string            { return TypeHeading }
func (*ThematicBreak) Type() string      { return TypeThematicBreak }
func (*Blockquote) Type() string         { return TypeBlockquote }
func (*List) Type() string               { return TypeList }
func (*ListItem) Type() string           { return TypeListItem }
func (*HTML) Type() string               { return TypeHTML }
func (*Code) Type() string               { return TypeCode }
func (*Definition) Type() string         { return TypeDefinition }
func (*Text) Type() string               { return TypeText }
func (*Emphasis) Type() string           { return TypeEmphasis }
func (*Strong) Type() string             { return TypeStrong }
func (*Delete) Type() string             { return TypeDelete }
func (*InlineCode) Type() string         { return TypeInlineCode }
func (*Break) Type() string              { return TypeBreak }
func (*Link) Type() string               { return TypeLink }
func (*Image) Type() string              { return TypeImage }
func (*LinkReference) Type() string      { return TypeLinkReference }
func (*ImageReference) Type() string     { return TypeImageReference }
func (*Table) Type() string              { return TypeTable }
func (*TableRow) Type() string           { return TypeTableRow }
func (*TableCell) Type() string          { return TypeTableCell }
func (*FootnoteDefinition) Type() string { return TypeFootnoteDefinition }
func (*FootnoteReference) Type() string  { return TypeFootnoteReference }
func (*Yaml) Type() string               { return TypeYaml }
func (*ContainerDirective) Type() string { return TypeContainerDirective }

func (n *Root) Pos() *Position               { return n.Position }
func (n *Paragraph) Pos() *Position          { return n.Position }
func (n *Heading) Pos() *Position            { return n.Position }
func (n *ThematicBreak) Pos() *Position      { return n.Position }
func (n *Blockquote) Pos() *Position         { return n.Position }
func (n *List) Pos() *Position               { return n.Position }
func (n *ListItem) Pos() *Position           { return n.Position }
func (n *HTML) Pos() *Position               { return n.Position }
func (n *Code) Pos() *Position               { return n.Position }
func (n *Definition) Pos() *Position         { return n.Position }
func (n *Text) Pos() *Position               { return n.Position }
func (n *Emphasis) Pos() *Position           { return n.Position }
func (n *Strong) Pos() *Position             { return n.Position }
func (n *Delete) Pos() *Position             { return n.Position }
func (n *InlineCode) Pos() *Position         { return n.Position }
func (n *Break) Pos() *Position              { return n.Position }
func (n *Link) Pos() *Position               { return n.Position }
func (n *Image) Pos() *Position              { return n.Position }
func (n *LinkReference) Pos() *Position      { return n.Position }
func (n *ImageReference) Pos() *Position     { return n.Position }
func (n *Table) Pos() *Position              { return n.Position }
func (n *TableRow) Pos() *Position           { return n.Position }
func (n *TableCell) Pos() *Position          { return n.Position }
func (n *FootnoteDefinition) Pos() *Position { return n.Position }
func (n *FootnoteReference) Pos() *Position  { return n.Position }
func (n *Yaml) Pos() *Position               { return n.Position }
func (n *ContainerDirective) Pos() *Position { return n.Position }

func (*Root) node()               {}
func (*Paragraph) node()          {}
func (*Heading) node()            {}
func (*ThematicBreak) node()      {}
func (*Blockquote) node()         {}
func (*List) node()               {}
func (*ListItem) node()           {}
func (*HTML) node()               {}
func (*Code) node()               {}
func (*Definition) node()         {}
func (*Text) node()               {}
func (*Emphasis) node()           {}
func (*Strong) node()             {}
func (*Delete) node()             {}
func (*InlineCode) node()         {}
func (*Break) node()              {}
func (*Link) node()               {}
func (*Image) node()              {}
func (*LinkReference) node()      {}
func (*ImageReference) node()     {}
func (*Table) node()              {}
func (*TableRow) node()           {}
func (*TableCell) node()          {}
func (*FootnoteDefinition) node() {}
func (*FootnoteReference) node()  {}
func (*Yaml) node()               {}
func (*ContainerDirective) node() {}

func (n *Root) ChildNodes() []Node               { return n.Children }
func (n *Paragraph) ChildNodes() []Node          { return n.Children }
func (n *Heading) ChildNodes() []Node            { return n.Children }
func (n *Blockquote) ChildNodes() []Node         { return n.Children }
func (n *List) ChildNodes() []Node               { return n.Children }
func (n *ListItem) ChildNodes() []Node           { return n.Children }
func (n *Emphasis) ChildNodes() []Node           { return n.Children }
func (n *Strong) ChildNodes() []Node             { return n.Children }
func (n *Delete) ChildNodes() []Node             { return n.Children }
func (n *Link) ChildNodes() []Node               { return n.Children }
func (n *LinkReference) ChildNodes() []Node      { return n.Children }
func (n *Table) ChildNodes() []Node              { return n.Children }
func (n *TableRow) ChildNodes() []Node           { return n.Children }
func (n *TableCell) ChildNodes() []Node          { return n.Children }
func (n *FootnoteDefinition) ChildNodes() []Node { return n.Children }
func (n *ContainerDirective) ChildNodes() []Node { return n.Children }

func (n *HTML) Text() string       { return n.Value }
func (n *Code) Text() string       { return n.Value }
func (n *Text) Text() string       { return n.Value }
func (n *InlineCode) Text() string { return n.Value }
func (n *Yaml) Text() string       { return n.Value }

func (n *Root) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Paragraph) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Heading) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Blockquote) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *List) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *ListItem) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Emphasis) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Strong) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Delete) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Link) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *LinkReference) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *Table) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *TableRow) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *TableCell) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *FootnoteDefinition) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}

func (n *ContainerDirective) WithChildren(children []Node) Parent {
	c := *n
	c.Children = children
	return &c
}
