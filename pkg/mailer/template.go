package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var fence = []byte("---")

// Template is a parsed template file: YAML frontmatter plus a markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits content on its frontmatter fences. Content that does
// not start with "---" is all body. The closing fence must start a line.
func ParseTemplate(content []byte) (*Template, error) {
	t := &Template{Metadata: map[string]any{}}
	if !bytes.HasPrefix(content, fence) {
		t.Body = string(content)
		return t, nil
	}

	rest := bytes.TrimLeft(content[len(fence):], "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	var front, body []byte
	switch {
	case bytes.HasPrefix(rest, fence):
		body = rest[len(fence):]
	default:
		i := bytes.Index(rest, append([]byte("\n"), fence...))
		if i < 0 {
			return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		front, body = rest[:i+1], rest[i+1+len(fence):]
	}

	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &t.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	t.Body = string(trimLineBreak(body))
	return t, nil
}

// trimLineBreak drops one leading "\n" or "\r\n".
func trimLineBreak(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	return bytes.TrimPrefix(b, []byte("\n"))
}
