package note

import (
	"strings"

	"github.com/hpungsan/inklings/internal/errors"
)

// MaxFileNameBytes is the longest file name most filesystems accept.
const MaxFileNameBytes = 255

var titleReplacer = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	":", "_",
	"*", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeTitle replaces characters that are unsafe in file names and trims the result.
func SanitizeTitle(title string) string {
	return strings.TrimSpace(titleReplacer.Replace(title))
}

// FileName sanitizes title and returns its note file name.
func FileName(title string) (string, error) {
	clean := SanitizeTitle(title)
	if clean == "" {
		return "", errors.NewInvalidRequest("title is required")
	}
	name := clean + Ext
	if len(name) > MaxFileNameBytes {
		return "", errors.NewInvalidRequest("title is too long")
	}
	return name, nil
}

// PathFor joins folder and the file name for title.
func PathFor(folder, title string) (string, error) {
	name, err := FileName(title)
	if err != nil {
		return "", err
	}
	folder = NormalizeFolder(folder)
	if folder == "" {
		return name, nil
	}
	return folder + "/" + name, nil
}
