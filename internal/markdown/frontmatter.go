package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitFrontmatter separates the frontmatter interior from the rest of the body.
// ok is false when body has no complete block, in which case rest is body.
func SplitFrontmatter(body string) (interior, rest string, ok bool) {
	lines := splitLines(body)
	end := frontmatterEnd(lines)
	if end < 0 {
		return "", body, false
	}
	return joinLines(lines[1:end]), joinLines(lines[end+1:]), true
}

// ParseFrontmatter decodes the frontmatter block of body into a key/value map.
// A body without frontmatter yields an empty map and no error.
func ParseFrontmatter(body string) (map[string]any, error) {
	meta := make(map[string]any)
	interior, _, ok := SplitFrontmatter(body)
	if !ok || strings.TrimSpace(interior) == "" {
		return meta, nil
	}
	if err := yaml.Unmarshal([]byte(interior), &meta); err != nil {
		return make(map[string]any), fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return meta, nil
}

// SetField sets key to value inside the frontmatter block of body.
//
// An existing "key:" line is rewritten in place; otherwise the line is added
// just before the closing sentinel. A body without a block gets a fresh one
// prepended. Every other byte of body is left unchanged, and setting the same
// value twice is a no-op.
func SetField(body, key, value string) string {
	field := key + ": " + value
	lines := splitLines(body)

	end := frontmatterEnd(lines)
	if end < 0 {
		return FrontmatterSentinel + "\n" + field + "\n" + FrontmatterSentinel + "\n" + body
	}

	prefix := key + ":"
	for i := 1; i < end; i++ {
		if strings.HasPrefix(lines[i], prefix) {
			if strings.HasSuffix(lines[i], "\r") {
				lines[i] = field + "\r"
			} else {
				lines[i] = field
			}
			return joinLines(lines)
		}
	}

	if strings.HasSuffix(lines[end], "\r") {
		field += "\r"
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:end]...)
	out = append(out, field)
	out = append(out, lines[end:]...)
	return joinLines(out)
}
