// Package snooze defers a note's eligibility by writing snoozed_until.
package snooze

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hpungsan/inklings/internal/dates"
	"github.com/hpungsan/inklings/internal/deck"
	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/markdown"
	"github.com/hpungsan/inklings/internal/note"
)

// Bodies reads and writes note text.
type Bodies interface {
	ReadBody(ctx context.Context, id string) (string, error)
	WriteBody(ctx context.Context, id, body string) error
}

// DeckRemover drops an id from the active deck.
type DeckRemover interface {
	Remove(ctx context.Context, id string) (*deck.SessionDeck, bool, error)
}

// Target returns the date a note snoozed today for days becomes eligible again.
func Target(today string, days int) (string, error) {
	if days < 0 {
		return "", errors.NewInvalidRequest("snooze days must be >= 0")
	}
	return dates.AddDays(today, days)
}

// Scheduler applies snoozes.
type Scheduler struct {
	bodies Bodies
	deck   DeckRemover
	logger *slog.Logger
}

// New creates a Scheduler.
func New(bodies Bodies, deck DeckRemover, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{bodies: bodies, deck: deck, logger: logger}
}

// Apply writes snoozed_until = target into the note's frontmatter, then drops
// the note from the active deck. A failed write leaves the deck untouched.
// removed reports whether the deck held the note.
func (s *Scheduler) Apply(ctx context.Context, id, target string) (removed bool, err error) {
	body, err := s.bodies.ReadBody(ctx, id)
	if err != nil {
		return false, err
	}

	updated := markdown.SetField(body, note.SnoozedUntilKey, target)
	if updated != body {
		if err := s.bodies.WriteBody(ctx, id, updated); err != nil {
			return false, err
		}
	}

	_, removed, err = s.deck.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove %s from deck: %w", id, err)
	}

	s.logger.Info("note snoozed", "id", id, "until", target, "removed_from_deck", removed)
	return removed, nil
}
