package deck

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/inklings/internal/dates"
	"github.com/hpungsan/inklings/internal/note"
)

// StateStore persists the single SessionDeck. Load returns nil, nil when no
// deck has been built yet.
type StateStore interface {
	Load(ctx context.Context) (*SessionDeck, error)
	Save(ctx context.Context, d *SessionDeck) error
}

// Corpus lists the live notes.
type Corpus interface {
	List(ctx context.Context) ([]note.Note, error)
}

// Options configures a Store.
type Options struct {
	Folder     string
	DailyCount int
	Clock      dates.Clock
	Rand       Rand
	Logger     *slog.Logger
}

// Store owns today's deck. Every call loads the persisted deck, applies one
// documented change, and saves only when something changed. Calls are
// serialized, so a Store is safe for concurrent use within one process.
type Store struct {
	mu sync.Mutex

	state  StateStore
	corpus Corpus
	folder string
	quota  int
	clock  dates.Clock
	rand   Rand
	logger *slog.Logger
}

// Dealt is a deck resolved against the live corpus.
type Dealt struct {
	Deck  *SessionDeck
	Notes []note.Note
}

// NewStore creates a Store.
func NewStore(state StateStore, corpus Corpus, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = globalRand{}
	}
	return &Store{
		state:  state,
		corpus: corpus,
		folder: note.NormalizeFolder(opts.Folder),
		quota:  max(opts.DailyCount, 0),
		clock:  opts.Clock,
		rand:   opts.Rand,
		logger: opts.Logger,
	}
}

// Today returns the local date the store works with.
func (s *Store) Today() string {
	return dates.Today(s.clock)
}

// GetOrBuildToday returns today's deck, building it if the stored deck is
// missing or from another day. Ids that no longer resolve are dropped and
// never backfilled.
func (s *Store) GetOrBuildToday(ctx context.Context) (*Dealt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	corpus, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	d, err := s.state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	if d.StaleFor(today) {
		d, err = s.build(ctx, today, corpus)
		if err != nil {
			return nil, err
		}
	}

	byID := index(corpus)
	dropped := d.Prune(func(id string) bool {
		_, ok := byID[id]
		return ok
	})
	if len(dropped) > 0 {
		s.logger.Debug("deck pruned", "date", d.Date, "dropped", dropped)
		if err := s.state.Save(ctx, d); err != nil {
			return nil, fmt.Errorf("save deck: %w", err)
		}
	}

	return deal(d, byID), nil
}

// ResetToday rebuilds today's deck unconditionally.
func (s *Store) ResetToday(ctx context.Context) (*Dealt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	corpus, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	d, err := s.build(ctx, today, corpus)
	if err != nil {
		return nil, err
	}

	return deal(d, index(corpus)), nil
}

// Remove drops id from the stored deck. It reports whether the deck changed.
func (s *Store) Remove(ctx context.Context, id string) (*SessionDeck, bool, error) {
	return s.mutate(ctx, func(d *SessionDeck) bool { return d.Remove(id) })
}

// ReplaceID swaps oldID for newID in the stored deck, keeping its position.
func (s *Store) ReplaceID(ctx context.Context, oldID, newID string) (*SessionDeck, bool, error) {
	return s.mutate(ctx, func(d *SessionDeck) bool { return d.Replace(oldID, newID) })
}

// Stats returns today's progress, zeros when the stored deck is stale.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.state.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load deck: %w", err)
	}
	return d.StatsFor(s.Today()), nil
}

func (s *Store) mutate(ctx context.Context, change func(*SessionDeck) bool) (*SessionDeck, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.state.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load deck: %w", err)
	}
	if d == nil || !change(d) {
		return d, false, nil
	}
	if err := s.state.Save(ctx, d); err != nil {
		return nil, false, fmt.Errorf("save deck: %w", err)
	}
	return d, true, nil
}

func (s *Store) build(ctx context.Context, today string, corpus []note.Note) (*SessionDeck, error) {
	for _, n := range corpus {
		if f := n.Metadata.SnoozedUntil(); f.Present && !f.WellFormed && n.ParentFolder == s.folder {
			s.logger.Warn("malformed snoozed_until", "id", n.ID, "value", f.Raw)
		}
	}

	eligible := Eligible(corpus, s.folder, today)
	ids := Sample(eligible, s.quota, s.rand)

	now := s.clock()
	deckID, err := generateULID(now)
	if err != nil {
		return nil, fmt.Errorf("generate deck id: %w", err)
	}
	d := &SessionDeck{
		ID:      deckID,
		Date:    today,
		NoteIDs: ids,
		Total:   len(ids),
		BuiltAt: now,
	}
	if err := s.state.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save deck: %w", err)
	}

	s.logger.Info("deck built", "date", today, "eligible", len(eligible), "chosen", len(ids), "deck_id", deckID)
	return d, nil
}

func index(corpus []note.Note) map[string]note.Note {
	byID := make(map[string]note.Note, len(corpus))
	for _, n := range corpus {
		byID[n.ID] = n
	}
	return byID
}

// deal resolves d's ids in deck order. Every id must be in byID.
func deal(d *SessionDeck, byID map[string]note.Note) *Dealt {
	notes := make([]note.Note, 0, len(d.NoteIDs))
	for _, id := range d.NoteIDs {
		notes = append(notes, byID[id])
	}
	return &Dealt{Deck: d, Notes: notes}
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return mrand.IntN(n) }

func generateULID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
