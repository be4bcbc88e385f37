// Package frontmatter separates a leading YAML block from markdown content.
package frontmatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Split separates YAML front matter (between leading --- delimiters) from
// the body. Without a well-formed block the whole input is body and fm is nil.
func Split(data []byte) (fm map[string]any, body []byte) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, data
	}

	rest := trimmed[len(delim):]
	// The opening delimiter must be alone on its line.
	if len(rest) > 0 && rest[0] != '\n' && rest[0] != '\r' {
		return nil, data
	}
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, data
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		if strings.TrimSpace(string(after[:nl])) != "" {
			return nil, data
		}
		after = after[nl+1:]
	} else if strings.TrimSpace(string(after)) != "" {
		return nil, data
	}

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, data
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, bytes.TrimLeft(after, "\n\r")
}
