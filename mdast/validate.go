package mdast

import (
	"fmt"
)

type category int

const (
	flow category = 1 << iota
	phrasing
)

// ValidationError reports a child placed where its parent does not accept
// it.
type ValidationError struct {
	Path   string
	Parent string
	Child  string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf(
		"%s: %s node is not allowed inside %s",
		err.Path, err.Child, err.Parent,
	)
}

func categoryOf(node Node) category {
	switch node.(type) {
	case *Text, *Emphasis, *Strong, *Delete, *InlineCode, *Break,
		*Link, *LinkReference, *FootnoteReference:
		return phrasing
	case *Image, *ImageReference, *HTML:
		// embeds stand on their own line as well as inside a paragraph
		return flow | phrasing
	case *Paragraph, *Heading, *ThematicBreak, *Blockquote, *List, *Table,
		*Code, *Definition, *FootnoteDefinition, *Yaml, *ContainerDirective:
		return flow
	}

	return 0
}

func accepts(parent Parent, child Node) bool {
	switch parent.(type) {
	case *List:
		_, ok := child.(*ListItem)
		return ok
	case *Table:
		_, ok := child.(*TableRow)
		return ok
	case *TableRow:
		_, ok := child.(*TableCell)
		return ok
	case *Paragraph, *Heading, *Emphasis, *Strong, *Delete, *Link,
		*LinkReference, *TableCell:
		return categoryOf(child)&phrasing != 0
	default:
		return categoryOf(child)&flow != 0
	}
}

// Validate checks that tree is a Root and that every child sits in a
// position its parent accepts.
func Validate(tree Node) error {
	if _, ok := tree.(*Root); !ok {
		return &ValidationError{Path: "$", Parent: "document", Child: typeOf(tree)}
	}

	return validate(tree.(Parent), "$")
}

func validate(parent Parent, path string) error {
	for i, child := range parent.ChildNodes() {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		if child == nil || !accepts(parent, child) {
			return &ValidationError{
				Path:   childPath,
				Parent: parent.Type(),
				Child:  typeOf(child),
			}
		}

		if nested, ok := child.(Parent); ok {
			if err := validate(nested, childPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func typeOf(node Node) string {
	if node == nil {
		return "nil"
	}
	return node.Type()
}
