package mdast

import "strings"

// ToString returns the plain text content of node: literal values and image
// alt texts, in document order.
func ToString(node Node) string {
	var buf strings.Builder
	writeString(&buf, node)
	return buf.String()
}

func writeString(buf *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Image:
		buf.WriteString(n.Alt)
	case *ImageReference:
		buf.WriteString(n.Alt)
	case Literal:
		buf.WriteString(n.Text())
	case Parent:
		for _, child := range n.ChildNodes() {
			writeString(buf, child)
		}
	}
}
