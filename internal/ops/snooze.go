package ops

import (
	"context"

	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/snooze"
	"github.com/hpungsan/inklings/internal/vault"
)

// SnoozeInput contains parameters for the Snooze operation.
type SnoozeInput struct {
	ID   string
	Days *int // default: config snooze_days
}

// SnoozeOutput contains the result of the Snooze operation.
type SnoozeOutput struct {
	ID              string `json:"id"`
	SnoozedUntil    string `json:"snoozed_until"`
	RemovedFromDeck bool   `json:"removed_from_deck"`
	Remaining       int    `json:"remaining"`
}

// Snooze defers a note for a number of days and drops it from today's deck.
func Snooze(ctx context.Context, d *Deps, input SnoozeInput) (*SnoozeOutput, error) {
	id, err := vault.CleanID(input.ID)
	if err != nil {
		return nil, err
	}

	days := d.Config.SnoozeDays
	if input.Days != nil {
		days = *input.Days
	}
	target, err := snooze.Target(d.today(), days)
	if err != nil {
		return nil, err
	}

	d.edits.Lock()
	removed, err := snooze.New(d.Vault, d.deck, d.Logger).Apply(ctx, id, target)
	d.edits.Unlock()
	if err != nil {
		return nil, err
	}
	d.record(ctx, db.KindSnooze, id, target)

	stats, err := d.deck.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &SnoozeOutput{
		ID:              id,
		SnoozedUntil:    target,
		RemovedFromDeck: removed,
		Remaining:       stats.Remaining,
	}, nil
}
