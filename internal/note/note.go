// Package note defines the Note content unit and its metadata view.
package note

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/hpungsan/inklings/internal/dates"
)

// SnoozedUntilKey is the only metadata key the deck logic reads or writes.
const SnoozedUntilKey = "snoozed_until"

// Ext is the note file extension.
const Ext = ".md"

// Note is one note in the corpus.
type Note struct {
	ID           string   `json:"id"`
	ParentFolder string   `json:"parent_folder"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

// New builds a Note from its vault-relative id.
func New(id string, meta Metadata) Note {
	return Note{ID: id, ParentFolder: ParentFolder(id), Metadata: meta}
}

// Name returns the file name without extension.
func (n Note) Name() string {
	return strings.TrimSuffix(path.Base(n.ID), Ext)
}

// ParentFolder returns the folder part of a slash-separated id ("" at the root).
func ParentFolder(id string) string {
	dir := path.Dir(id)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// NormalizeFolder strips leading and trailing separators.
func NormalizeFolder(folder string) string {
	return strings.Trim(folder, "/")
}

// Metadata is the parsed frontmatter of a note.
type Metadata map[string]any

// DateField is a typed view of a date-valued metadata entry.
type DateField struct {
	// Raw is the value as text. Compared lexicographically even when malformed.
	Raw string
	// Present is false when the key is absent or null.
	Present bool
	// WellFormed reports whether Raw is a YYYY-MM-DD date.
	WellFormed bool
}

// Date returns the date-valued field key.
func (m Metadata) Date(key string) DateField {
	v, ok := m[key]
	if !ok || v == nil {
		return DateField{}
	}

	var raw string
	switch val := v.(type) {
	case string:
		raw = strings.TrimSpace(val)
	case time.Time:
		raw = val.UTC().Format(dates.Layout)
	default:
		raw = fmt.Sprint(val)
	}
	return DateField{Raw: raw, Present: true, WellFormed: dates.Valid(raw)}
}

// SnoozedUntil returns the snooze field.
func (m Metadata) SnoozedUntil() DateField {
	return m.Date(SnoozedUntilKey)
}
