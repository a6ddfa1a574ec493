package metadata

import (
	"sort"
	"strings"
	"unicode"
)

const (
	KeyFile = `file`
	KeyName = `name`
	KeyAlt  = `alt`
)

// Fields is the raw key/value content of a diagram annotation.
type Fields map[string]string

// Result is either a Meta or an Incomplete.
type Result interface {
	result()
}

// Meta is an annotation carrying every key required to render a diagram.
type Meta struct {
	File   string
	Name   string
	Alt    string
	HasAlt bool
	Fields Fields
}

// Incomplete is an annotation lacking one or more required keys. Blocks with
// such annotations are left alone.
type Incomplete struct {
	Fields  Fields
	Missing []string
}

func (Meta) result()       {}
func (Incomplete) result() {}

// Parse splits annotation on whitespace and every token on its first '='.
// When a key repeats, the last value wins. A token without '=' is kept as a
// key with an empty value; a token with an empty key is dropped.
func Parse(annotation string) Fields {
	fields := Fields{}
	for _, token := range strings.Fields(annotation) {
		key, value, _ := strings.Cut(token, "=")
		if key == "" {
			continue
		}

		fields[key] = value
	}

	return fields
}

// Extract parses annotation and checks that `file` and `name` are present
// and not empty.
func Extract(annotation string) Result {
	fields := Parse(annotation)

	var missing []string
	for _, key := range []string{KeyFile, KeyName} {
		if fields[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return Incomplete{Fields: fields, Missing: missing}
	}

	alt, hasAlt := fields[KeyAlt]

	return Meta{
		File:   fields[KeyFile],
		Name:   fields[KeyName],
		Alt:    alt,
		HasAlt: hasAlt,
		Fields: fields,
	}
}

// SplitTitle splits an image title of the form "<marker> key=value ..." into
// the marker and the remaining annotation.
func SplitTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	marker, annotation := CutWord(title)
	if strings.Contains(marker, "=") {
		return "", title
	}

	return marker, annotation
}

// CutWord splits text at its first whitespace character into the leading
// word and the trimmed remainder.
func CutWord(text string) (string, string) {
	text = strings.TrimSpace(text)

	index := strings.IndexFunc(text, unicode.IsSpace)
	if index < 0 {
		return text, ""
	}

	return text[:index], strings.TrimSpace(text[index:])
}

// Keys returns the keys of fields in lexical order.
func (fields Fields) Keys() []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
