package transformer

import (
	"strings"

	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/kovetskiy/mark-diagram/metadata"
)

// Rewrite builds the image reference and the definition replacing a rendered
// diagram. Both share the lower-cased name as identifier.
func Rewrite(
	meta metadata.Meta,
	url string,
	referenceType mdast.ReferenceType,
) (*mdast.ImageReference, *mdast.Definition) {
	identifier := Identifier(meta.Name)

	alt := meta.Alt
	if !meta.HasAlt {
		alt = meta.Name
	}

	reference := &mdast.ImageReference{
		Identifier:    identifier,
		Label:         meta.Name,
		ReferenceType: referenceType,
		Alt:           alt,
	}

	definition := &mdast.Definition{
		Identifier: identifier,
		Label:      meta.Name,
		URL:        url,
		Title:      meta.Alt,
	}

	return reference, definition
}

// Identifier normalizes a diagram name: ASCII letters are lower-cased,
// everything else is kept.
func Identifier(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, name)
}
