package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/inklings/internal/config"
	"github.com/hpungsan/inklings/internal/dates"
	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/deck"
	"github.com/hpungsan/inklings/internal/markdown"
	"github.com/hpungsan/inklings/internal/note"
	"github.com/hpungsan/inklings/internal/vault"
)

// Activity limits
const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// Deps bundles what every operation needs. Build it with NewDeps.
type Deps struct {
	DB     *sql.DB
	Vault  *vault.Vault
	Config *config.Config
	Clock  dates.Clock
	Logger *slog.Logger

	deck    *deck.Store
	headers *markdown.Headers

	// edits serializes read-modify-write of note bodies and paths.
	edits sync.Mutex
}

// Option customizes NewDeps.
type Option func(*depsOptions)

type depsOptions struct {
	clock  dates.Clock
	rand   deck.Rand
	logger *slog.Logger
}

// WithClock fixes the clock, mainly for tests.
func WithClock(c dates.Clock) Option {
	return func(o *depsOptions) { o.clock = c }
}

// WithRand fixes the sampling source, mainly for tests.
func WithRand(r deck.Rand) Option {
	return func(o *depsOptions) { o.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *depsOptions) { o.logger = l }
}

// NewDeps wires the deck store and section engine from cfg.
func NewDeps(database *sql.DB, v *vault.Vault, cfg *config.Config, opts ...Option) *Deps {
	o := depsOptions{clock: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	store := deck.NewStore(db.NewDeckState(database), v, deck.Options{
		Folder:     cfg.Folder,
		DailyCount: cfg.DailyCount,
		Clock:      o.clock,
		Rand:       o.rand,
		Logger:     o.logger,
	})

	return &Deps{
		DB:      database,
		Vault:   v,
		Config:  cfg,
		Clock:   o.clock,
		Logger:  o.logger,
		deck:    store,
		headers: markdown.NewHeaders(cfg.HeaderMarker),
	}
}

// Deck returns the daily deck store.
func (d *Deps) Deck() *deck.Store {
	return d.deck
}

func (d *Deps) today() string {
	return dates.Today(d.Clock)
}

// record writes an activity row. Failures are logged, never returned: the
// note change it describes has already happened.
func (d *Deps) record(ctx context.Context, kind, noteID, detail string) {
	a := &db.Activity{Kind: kind, NoteID: noteID, Date: d.today(), Detail: detail}
	if err := db.RecordActivity(ctx, d.DB, a); err != nil {
		d.Logger.Warn("failed to record activity", "kind", kind, "id", noteID, "error", err)
	}
}

// NoteSummary identifies a note in listings.
type NoteSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// summarize reads n's title, falling back to its file name.
func (d *Deps) summarize(ctx context.Context, n note.Note) NoteSummary {
	s := NoteSummary{ID: n.ID, Title: n.Name()}
	body, err := d.Vault.ReadBody(ctx, n.ID)
	if err != nil {
		d.Logger.Debug("title unavailable", "id", n.ID, "error", err)
		return s
	}
	if title := markdown.Title(body); title != "" {
		s.Title = title
	}
	return s
}
