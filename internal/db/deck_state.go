package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/hpungsan/inklings/internal/deck"
	"github.com/hpungsan/inklings/internal/errors"
)

// DeckState persists the single SessionDeck row.
type DeckState struct {
	db  *sql.DB
	now func() time.Time
}

// NewDeckState returns a deck.StateStore backed by db.
func NewDeckState(db *sql.DB) *DeckState {
	return &DeckState{db: db, now: time.Now}
}

// Load returns the stored deck, or nil when none has been built.
func (s *DeckState) Load(ctx context.Context) (*deck.SessionDeck, error) {
	var (
		d       deck.SessionDeck
		idsJSON string
		builtAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT deck_id, date, note_ids_json, total, built_at
		FROM deck_state
		WHERE id = 1
	`).Scan(&d.ID, &d.Date, &idsJSON, &d.Total, &builtAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &d.NoteIDs); err != nil {
		return nil, errors.NewInternal(err)
	}
	if d.NoteIDs == nil {
		d.NoteIDs = []string{}
	}
	d.BuiltAt = time.Unix(builtAt, 0)
	return &d, nil
}

// Save replaces the stored deck.
func (s *DeckState) Save(ctx context.Context, d *deck.SessionDeck) error {
	ids := d.NoteIDs
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return errors.NewInternal(err)
	}

	builtAt := d.BuiltAt
	if builtAt.IsZero() {
		builtAt = s.now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deck_state (id, deck_id, date, note_ids_json, total, built_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deck_id = excluded.deck_id,
			date = excluded.date,
			note_ids_json = excluded.note_ids_json,
			total = excluded.total,
			built_at = excluded.built_at,
			updated_at = excluded.updated_at
	`, d.ID, d.Date, string(data), d.Total, builtAt.Unix(), s.now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
