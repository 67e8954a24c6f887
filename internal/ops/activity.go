package ops

import (
	"context"

	"github.com/hpungsan/inklings/internal/db"
)

// ActivityInput contains parameters for the Activity operation.
type ActivityInput struct {
	Limit int // default: 20, max: 100
}

// ActivityOutput lists recent actions, newest first.
type ActivityOutput struct {
	Items []db.Activity `json:"items"`
}

// Activity returns the most recently recorded actions.
func Activity(ctx context.Context, d *Deps, input ActivityInput) (*ActivityOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	items, err := db.ListActivity(ctx, d.DB, limit)
	if err != nil {
		return nil, err
	}
	return &ActivityOutput{Items: items}, nil
}
