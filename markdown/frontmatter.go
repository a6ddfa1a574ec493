package markdown

import (
	"bytes"

	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/reconquest/karma-go"
	"gopkg.in/yaml.v3"
)

// splitFrontMatter finds a YAML block delimited by "---" lines at the very
// beginning of source. end is the offset right after the closing delimiter.
func splitFrontMatter(source []byte) (*mdast.Yaml, int, error) {
	line, offset := nextLine(source, 0)
	if string(line) != "---" {
		return nil, 0, nil
	}

	start := offset
	for offset < len(source) {
		var next int
		line, next = nextLine(source, offset)

		if string(line) == "---" || string(line) == "..." {
			value := source[start:offset]
			value = bytes.TrimSuffix(value, []byte("\n"))
			value = bytes.TrimSuffix(value, []byte("\r"))

			var fields map[string]interface{}
			err := yaml.Unmarshal(value, &fields)
			if err != nil {
				return nil, 0, karma.Format(err, "unable to parse front matter")
			}

			end := next
			for end > offset && (source[end-1] == '\n' || source[end-1] == '\r') {
				end--
			}

			return &mdast.Yaml{Value: string(value)}, end, nil
		}

		offset = next
	}

	// no closing delimiter, not front matter
	return nil, 0, nil
}

// nextLine returns the line starting at offset without its line ending and
// the offset of the following line.
func nextLine(source []byte, offset int) ([]byte, int) {
	end := bytes.IndexByte(source[offset:], '\n')
	if end < 0 {
		return bytes.TrimSuffix(source[offset:], []byte("\r")), len(source)
	}

	return bytes.TrimSuffix(source[offset:offset+end], []byte("\r")), offset + end + 1
}

// blankOut replaces everything before end with spaces, keeping line endings,
// so that offsets in the rest of the document stay valid.
func blankOut(source []byte, end int) []byte {
	body := bytes.Clone(source)
	for i := 0; i < end; i++ {
		if body[i] != '\n' && body[i] != '\r' {
			body[i] = ' '
		}
	}

	return body
}
