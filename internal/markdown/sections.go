package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Section is a dated block of a note body, located by line index.
type Section struct {
	Date   string // ISO date from the header line
	Header int    // Line index of the header
	End    int    // Line index of the next same-level dated header, or the line count
}

// Headers matches dated section headers for one marker.
type Headers struct {
	marker string
	dated  *regexp.Regexp
	title  *regexp.Regexp
}

// NewHeaders compiles the header patterns for marker, e.g. "######".
// The title heading is a single instance of the marker's first symbol.
func NewHeaders(marker string) *Headers {
	symbol, _ := utf8.DecodeRuneInString(marker)
	return &Headers{
		marker: marker,
		dated:  regexp.MustCompile(`^` + regexp.QuoteMeta(marker) + `[ \t]+(\d{4}-\d{2}-\d{2})[ \t]*$`),
		title:  regexp.MustCompile(`^` + regexp.QuoteMeta(string(symbol)) + `\s+`),
	}
}

// Marker returns the header marker.
func (h *Headers) Marker() string {
	return h.marker
}

// datedHeader returns the date of a dated header line.
func (h *Headers) datedHeader(line string) (string, bool) {
	m := h.dated.FindStringSubmatch(bare(line))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Sections returns every dated section of lines in order.
// Headers inside fenced code blocks are ignored.
func (h *Headers) Sections(lines []string) []Section {
	fenced := fencedLines(lines)
	var sections []Section
	for i, line := range lines {
		if fenced[i] {
			continue
		}
		date, ok := h.datedHeader(line)
		if !ok {
			continue
		}
		if n := len(sections); n > 0 {
			sections[n-1].End = i
		}
		sections = append(sections, Section{Date: date, Header: i, End: len(lines)})
	}
	return sections
}

// Find returns the first section dated date.
func (h *Headers) Find(lines []string, date string) (Section, bool) {
	for _, s := range h.Sections(lines) {
		if s.Date == date {
			return s, true
		}
	}
	return Section{}, false
}

// HasSection reports whether body has a header for date.
func (h *Headers) HasSection(body, date string) bool {
	_, ok := h.Find(splitLines(body), date)
	return ok
}

// Upsert adds paragraph to the section for date, creating the section under
// the title when missing. created reports whether a new header was written.
func (h *Headers) Upsert(body, date, paragraph string) (out string, created bool) {
	if h.HasSection(body, date) {
		out, _ = h.Append(body, date, paragraph)
		return out, false
	}
	return h.Insert(body, date, paragraph), true
}

// Append adds paragraph at the end of the section for date, separated from the
// section's existing content by exactly one blank line and followed by a
// single newline, so a following header comes right after it. ok is false,
// and body is returned unchanged, when no such section exists.
func (h *Headers) Append(body, date, paragraph string) (out string, ok bool) {
	lines := splitLines(body)
	s, found := h.Find(lines, date)
	if !found {
		return body, false
	}

	head := strings.TrimRightFunc(joinLines(lines[:s.End]), unicode.IsSpace)
	out = head + "\n\n" + strings.TrimSpace(paragraph) + "\n"
	if s.End < len(lines) {
		out += joinLines(lines[s.End:])
	}
	return out, true
}

// Insert writes a new section for date directly after the frontmatter and the
// title heading, ahead of any older sections.
func (h *Headers) Insert(body, date, paragraph string) string {
	lines := splitLines(body)
	at := h.insertionPoint(lines)

	block := h.marker + " " + date + "\n" + strings.TrimSpace(paragraph) + "\n"

	before := joinLines(lines[:at])
	after := strings.TrimLeft(joinLines(lines[at:]), "\r\n")

	var b strings.Builder
	if strings.TrimSpace(before) != "" {
		b.WriteString(strings.TrimRight(before, "\r\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(block)
	if after != "" {
		b.WriteString("\n")
		b.WriteString(after)
	}
	return b.String()
}

// insertionPoint returns the line index a new section goes before: past the
// frontmatter, then past the first title heading and one blank line after it.
func (h *Headers) insertionPoint(lines []string) int {
	at := frontmatterEnd(lines) + 1
	fenced := fencedLines(lines)
	for i := at; i < len(lines); i++ {
		if fenced[i] || !h.title.MatchString(bare(lines[i])) {
			continue
		}
		at = i + 1
		if at < len(lines) && bare(lines[at]) == "" {
			at++
		}
		break
	}
	return at
}
