package ops

import (
	"context"
	"sync"

	"github.com/hpungsan/inklings/internal/deck"
	"github.com/hpungsan/inklings/internal/errors"
)

// Session is a walk through today's deck. It lives in memory only; a new
// process starts a new session.
type Session struct {
	deps *Deps

	mu      sync.Mutex
	date    string
	started bool
	cursor  *deck.Cursor
}

// SessionOutput is the cursor state plus the note under it.
type SessionOutput struct {
	Date     string        `json:"date"`
	Position deck.Position `json:"position"`
	Current  *NoteSummary  `json:"current,omitempty"`
}

// NewSession creates an unstarted session.
func NewSession(d *Deps) *Session {
	return &Session{deps: d, cursor: deck.NewCursor(nil)}
}

// Start loads today's deck and rewinds to its first note.
func (s *Session) Start(ctx context.Context) (*SessionOutput, error) {
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s.output(ctx)
}

func (s *Session) load(ctx context.Context) error {
	dealt, err := s.deps.deck.GetOrBuildToday(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Reset(dealt.Deck.NoteIDs)
	s.date = dealt.Deck.Date
	s.started = true
	return nil
}

// Current returns the note under the cursor, starting the session if needed.
func (s *Session) Current(ctx context.Context) (*SessionOutput, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.output(ctx)
}

// Next advances the cursor.
func (s *Session) Next(ctx context.Context) (*SessionOutput, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	s.cursor.Next()
	return s.output(ctx)
}

// Prev steps the cursor back.
func (s *Session) Prev(ctx context.Context) (*SessionOutput, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	s.cursor.Prev()
	return s.output(ctx)
}

// Forget drops id from the walk, e.g. after a snooze.
func (s *Session) Forget(id string) {
	s.cursor.Remove(id)
}

// Renamed follows a note to its new id.
func (s *Session) Renamed(oldID, newID string) {
	s.cursor.Replace(oldID, newID)
}

// ensure starts the session on first use and restarts it when the day rolls over.
func (s *Session) ensure(ctx context.Context) error {
	s.mu.Lock()
	stale := !s.started || s.date != s.deps.today()
	s.mu.Unlock()
	if !stale {
		return nil
	}
	return s.load(ctx)
}

func (s *Session) output(ctx context.Context) (*SessionOutput, error) {
	s.mu.Lock()
	date := s.date
	s.mu.Unlock()

	out := &SessionOutput{Date: date, Position: s.cursor.Position()}
	id, ok := s.cursor.Current()
	if !ok {
		return out, nil
	}

	// The note may have vanished since the deck was loaded; skip past it.
	n, err := s.deps.Vault.Get(ctx, id)
	if errors.Is(err, errors.ErrNotFound) {
		s.deps.Logger.Debug("session note gone", "id", id)
		s.cursor.Remove(id)
		return s.output(ctx)
	}
	if err != nil {
		return nil, err
	}
	summary := s.deps.summarize(ctx, n)
	out.Current = &summary
	return out, nil
}
