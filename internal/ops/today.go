package ops

import (
	"context"

	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/deck"
)

// DeckOutput describes today's deck.
type DeckOutput struct {
	Date      string        `json:"date"`
	DeckID    string        `json:"deck_id"`
	Total     int           `json:"total"`
	Remaining int           `json:"remaining"`
	Notes     []NoteSummary `json:"notes"`
}

// Today returns today's deck, building it on the first call of the day.
func Today(ctx context.Context, d *Deps) (*DeckOutput, error) {
	dealt, err := d.deck.GetOrBuildToday(ctx)
	if err != nil {
		return nil, err
	}
	return d.deckOutput(ctx, dealt), nil
}

// Reset discards today's deck and samples a new one.
func Reset(ctx context.Context, d *Deps) (*DeckOutput, error) {
	dealt, err := d.deck.ResetToday(ctx)
	if err != nil {
		return nil, err
	}
	d.record(ctx, db.KindReset, "", dealt.Deck.ID)
	return d.deckOutput(ctx, dealt), nil
}

func (d *Deps) deckOutput(ctx context.Context, dealt *deck.Dealt) *DeckOutput {
	notes := make([]NoteSummary, 0, len(dealt.Notes))
	for _, n := range dealt.Notes {
		notes = append(notes, d.summarize(ctx, n))
	}
	stats := dealt.Deck.StatsFor(dealt.Deck.Date)
	return &DeckOutput{
		Date:      dealt.Deck.Date,
		DeckID:    dealt.Deck.ID,
		Total:     stats.Total,
		Remaining: stats.Remaining,
		Notes:     notes,
	}
}
