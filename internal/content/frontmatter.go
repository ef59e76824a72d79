package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates a document opened a YAML front matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// splitFrontMatter separates `---` delimited YAML front matter from the
// Markdown body and parses it. Documents without front matter return an
// empty map and the full input as body.
func splitFrontMatter(content []byte) (map[string]any, []byte, error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return map[string]any{}, content, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return map[string]any{}, content[start+len(open):], nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			idx = len(content) - start - len(nl) - 3
			return parseFrontMatter(content[start : start+idx+len(nl)], nil)
		}
		return nil, nil, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	body := content[start+idx+len(closeSeq):]
	return parseFrontMatter(content[start:end], body)
}

func parseFrontMatter(raw, body []byte) (map[string]any, []byte, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, body, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// stringField returns a trimmed string front matter value.
func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return strings.TrimSpace(s)
}

func boolField(fields map[string]any, key string) bool {
	b, _ := fields[key].(bool)
	return b
}
