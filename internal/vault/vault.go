// Package vault stores notes as markdown files under a root directory.
package vault

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/markdown"
	"github.com/hpungsan/inklings/internal/note"
)

// DefaultGlob selects every markdown file.
const DefaultGlob = "**/*.md"

const notePerm = 0644

// Vault is a directory of notes. A note's id is its slash-separated path
// relative to the root.
type Vault struct {
	root   string
	glob   string
	logger *slog.Logger
}

// Open returns a Vault rooted at root. glob filters which files are notes.
func Open(root, glob string, logger *slog.Logger) (*Vault, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid note glob %q", glob))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("vault root %s is not a directory", abs))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{root: abs, glob: glob, logger: logger}, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// Path returns the filesystem path of id.
func (v *Vault) Path(id string) string {
	return filepath.Join(v.root, filepath.FromSlash(id))
}

// ID returns the note id for a filesystem path under the root.
func (v *Vault) ID(path string) (string, bool) {
	rel, err := filepath.Rel(v.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	id := filepath.ToSlash(rel)
	return id, v.Matches(id)
}

// Matches reports whether id names a note file.
func (v *Vault) Matches(id string) bool {
	if _, err := CleanID(id); err != nil {
		return false
	}
	if strings.HasPrefix(filepath.Base(id), tempPrefix) {
		return false
	}
	ok, err := doublestar.Match(v.glob, id)
	return err == nil && ok
}

// List returns a snapshot of every note. Dot-directories and symlinks are skipped.
func (v *Vault) List(ctx context.Context) ([]note.Note, error) {
	var notes []note.Note
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		id, ok := v.ID(p)
		if !ok {
			return nil
		}
		n, err := v.load(id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil
			}
			return err
		}
		notes = append(notes, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Get returns the note with id.
func (v *Vault) Get(ctx context.Context, id string) (note.Note, error) {
	id, err := CleanID(id)
	if err != nil {
		return note.Note{}, err
	}
	return v.load(id)
}

// Metadata returns the parsed frontmatter of id.
func (v *Vault) Metadata(ctx context.Context, id string) (note.Metadata, error) {
	n, err := v.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.Metadata, nil
}

// Exists reports whether id resolves to a note file.
func (v *Vault) Exists(id string) bool {
	id, err := CleanID(id)
	if err != nil {
		return false
	}
	info, err := os.Lstat(v.Path(id))
	return err == nil && info.Mode().IsRegular()
}

// ReadBody returns the full text of id.
func (v *Vault) ReadBody(ctx context.Context, id string) (string, error) {
	id, err := CleanID(id)
	if err != nil {
		return "", err
	}
	return v.read(id)
}

// WriteBody atomically replaces the text of an existing note.
func (v *Vault) WriteBody(ctx context.Context, id, body string) error {
	id, err := CleanID(id)
	if err != nil {
		return err
	}
	info, err := os.Lstat(v.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(id)
		}
		return errors.NewWriteFailed(id, err)
	}
	if !info.Mode().IsRegular() {
		return errors.NewInvalidRequest("note must be a regular file")
	}
	if err := writeFileAtomic(v.Path(id), []byte(body), info.Mode().Perm()); err != nil {
		return errors.NewWriteFailed(id, err)
	}
	return nil
}

// Create writes a new note at id. Parent folders are created as needed.
func (v *Vault) Create(ctx context.Context, id, body string) (note.Note, error) {
	id, err := CleanID(id)
	if err != nil {
		return note.Note{}, err
	}
	p := v.Path(id)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return note.Note{}, errors.NewWriteFailed(id, err)
	}

	f, err := openNoFollow(id, p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, notePerm)
	if err != nil {
		if errors.Is(err, errors.ErrNameAlreadyExists) || errors.Is(err, errors.ErrInvalidRequest) {
			return note.Note{}, err
		}
		return note.Note{}, errors.NewWriteFailed(id, err)
	}
	if _, err := io.WriteString(f, body); err != nil {
		f.Close()
		return note.Note{}, errors.NewWriteFailed(id, err)
	}
	if err := f.Close(); err != nil {
		return note.Note{}, errors.NewWriteFailed(id, err)
	}
	return v.load(id)
}

// Rename moves id to newID. The target must not exist.
func (v *Vault) Rename(ctx context.Context, id, newID string) error {
	id, err := CleanID(id)
	if err != nil {
		return err
	}
	newID, err = CleanID(newID)
	if err != nil {
		return err
	}
	if id == newID {
		return nil
	}
	if !v.Exists(id) {
		return errors.NewNotFound(id)
	}

	to := v.Path(newID)
	// Case-only renames on case-insensitive filesystems see the source as the target.
	if _, err := os.Lstat(to); err == nil && !strings.EqualFold(id, newID) {
		return errors.NewNameAlreadyExists(newID)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return errors.NewWriteFailed(newID, err)
	}
	if err := os.Rename(v.Path(id), to); err != nil {
		return errors.NewWriteFailed(id, err)
	}
	return nil
}

func (v *Vault) read(id string) (string, error) {
	f, err := openNoFollow(id, v.Path(id), os.O_RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", id, err)
	}
	return string(data), nil
}

// load reads id and parses its frontmatter. Malformed frontmatter yields
// empty metadata and a warning.
func (v *Vault) load(id string) (note.Note, error) {
	body, err := v.read(id)
	if err != nil {
		return note.Note{}, err
	}
	meta, err := markdown.ParseFrontmatter(body)
	if err != nil {
		v.logger.Warn("malformed frontmatter", "id", id, "error", err)
	}
	return note.New(id, note.Metadata(meta)), nil
}
