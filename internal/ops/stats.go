package ops

import "context"

// StatsOutput is today's progress.
type StatsOutput struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

// Stats reports today's deck progress without building a deck.
func Stats(ctx context.Context, d *Deps) (*StatsOutput, error) {
	s, err := d.deck.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Date: d.deck.Today(), Total: s.Total, Remaining: s.Remaining}, nil
}
