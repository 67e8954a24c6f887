// Package watch follows notes that are renamed outside inklings, so today's
// deck keeps pointing at them.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hpungsan/inklings/internal/note"
	"github.com/hpungsan/inklings/internal/ops"
)

// DefaultWindow is how long a departure waits for its matching arrival.
const DefaultWindow = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Window time.Duration
	Logger *slog.Logger

	// OnRename runs after a detected rename has been applied to the deck.
	OnRename func(oldID, newID string)
}

// Watcher watches the configured folder, non-recursively, for renames.
type Watcher struct {
	deps     *ops.Deps
	window   time.Duration
	logger   *slog.Logger
	onRename func(oldID, newID string)
	now      func() time.Time
}

// New creates a Watcher over deps' vault and folder.
func New(deps *ops.Deps, opts Options) *Watcher {
	w := &Watcher{
		deps:     deps,
		window:   opts.Window,
		logger:   opts.Logger,
		onRename: opts.OnRename,
		now:      time.Now,
	}
	if w.window <= 0 {
		w.window = DefaultWindow
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	dir := w.deps.Vault.Path(w.deps.Config.Folder)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching folder", "folder", w.deps.Config.Folder)

	known, err := w.snapshot(ctx)
	if err != nil {
		return err
	}

	pairer := NewPairer(w.window)
	ticker := time.NewTicker(w.window / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.observe(pairer, known, event)

		case wErr, ok := <-fw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)

		case <-ticker.C:
			for _, r := range pairer.Flush(w.now()) {
				w.apply(ctx, r)
			}
		}
	}
}

// snapshot returns the ids already present in the watched folder.
func (w *Watcher) snapshot(ctx context.Context) (map[string]bool, error) {
	notes, err := w.deps.Vault.List(ctx)
	if err != nil {
		return nil, err
	}
	folder := note.NormalizeFolder(w.deps.Config.Folder)
	known := make(map[string]bool)
	for _, n := range notes {
		if n.ParentFolder == folder {
			known[n.ID] = true
		}
	}
	return known, nil
}

// observe feeds the pairer. A create over a path that is already known is a
// rewrite in place, such as an atomic save, and never counts as an arrival.
func (w *Watcher) observe(p *Pairer, known map[string]bool, event fsnotify.Event) {
	id, ok := w.deps.Vault.ID(event.Name)
	if !ok {
		return
	}
	w.logger.Debug("event received", "id", id, "op", event.Op.String())

	now := w.now()
	switch {
	case event.Has(fsnotify.Create):
		if known[id] {
			return
		}
		known[id] = true
		p.Arrive(id, now)
	case event.Has(fsnotify.Rename), event.Has(fsnotify.Remove):
		delete(known, id)
		p.Depart(id, now)
	}
}

// apply points the deck at r.NewID when the filesystem still agrees that the
// note moved.
func (w *Watcher) apply(ctx context.Context, r Rename) {
	v := w.deps.Vault
	if v.Exists(r.OldID) || !v.Exists(r.NewID) {
		w.logger.Debug("rename no longer holds", "from", r.OldID, "to", r.NewID)
		return
	}

	if err := ops.ApplyRename(ctx, w.deps, r.OldID, r.NewID); err != nil {
		w.logger.Error("failed to apply rename", "from", r.OldID, "to", r.NewID, "error", err)
		return
	}
	w.logger.Info("note rename detected", "from", r.OldID, "to", r.NewID)
	if w.onRename != nil {
		w.onRename(r.OldID, r.NewID)
	}
}
