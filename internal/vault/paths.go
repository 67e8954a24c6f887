package vault

import (
	"fmt"
	"path"
	"strings"

	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/note"
)

// CleanID validates a note id and returns it in canonical form: a relative,
// slash-separated path with the note extension and no traversal.
func CleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	if strings.ContainsRune(id, '\\') || strings.ContainsRune(id, 0) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid note id %q", id))
	}
	if containsTraversal(id) {
		return "", errors.NewInvalidRequest("id must not contain directory traversal (..)")
	}
	if strings.HasPrefix(id, "/") {
		return "", errors.NewInvalidRequest("id must be relative to the vault")
	}

	cleaned := path.Clean(id)
	if path.Ext(cleaned) != note.Ext {
		return "", errors.NewInvalidRequest(fmt.Sprintf("id must have %s extension", note.Ext))
	}
	if hidden(cleaned) {
		return "", errors.NewInvalidRequest("id must not be inside a dot-directory")
	}
	return cleaned, nil
}

// containsTraversal checks if a slash path contains a ".." component.
func containsTraversal(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// hidden reports whether any directory component of p starts with a dot.
func hidden(p string) bool {
	dir := path.Dir(p)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
