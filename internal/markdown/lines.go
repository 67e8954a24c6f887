// Package markdown edits note bodies: the frontmatter block, dated sections,
// and the title heading.
//
// All scanning is line oriented. A body is split on "\n" and joined back the
// same way, so untouched lines (including any "\r") survive byte for byte.
package markdown

import (
	"regexp"
	"strings"
)

// FrontmatterSentinel opens and closes the frontmatter block.
const FrontmatterSentinel = "---"

// fencePattern matches fenced code block delimiters (``` or ~~~), allowing
// 0-3 spaces of indentation.
var fencePattern = regexp.MustCompile("^[ ]{0,3}(`{3,}|~{3,})")

// Lines splits body into lines the way every function here does.
func Lines(body string) []string {
	return splitLines(body)
}

func splitLines(body string) []string {
	return strings.Split(body, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// bare strips a trailing carriage return for matching.
func bare(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// frontmatterEnd returns the line index of the closing sentinel, or -1 when
// the body has no complete frontmatter block.
func frontmatterEnd(lines []string) int {
	if len(lines) == 0 || bare(lines[0]) != FrontmatterSentinel {
		return -1
	}
	for i := 1; i < len(lines); i++ {
		if bare(lines[i]) == FrontmatterSentinel {
			return i
		}
	}
	return -1
}

// fencedLines marks lines that sit inside a fenced code block, delimiters
// included. A closing fence must use the same character and be at least as
// long as the opening one.
func fencedLines(lines []string) []bool {
	fenced := make([]bool, len(lines))
	var openChar byte
	var openLen int
	inFence := false

	for i, line := range lines {
		m := fencePattern.FindStringSubmatch(bare(line))
		if m == nil {
			fenced[i] = inFence
			continue
		}
		fence := m[1]
		switch {
		case !inFence:
			openChar, openLen = fence[0], len(fence)
			inFence = true
			fenced[i] = true
		case fence[0] == openChar && len(fence) >= openLen:
			fenced[i] = true
			inFence = false
		default:
			fenced[i] = true
		}
	}
	return fenced
}
