package ops

import (
	"context"

	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/note"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title string
	Body  string // default: empty
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Create adds a note to the configured folder. It is not dealt into today's
// deck; the next day's sample may pick it up.
func Create(ctx context.Context, d *Deps, input CreateInput) (*CreateOutput, error) {
	id, err := note.PathFor(d.Config.Folder, input.Title)
	if err != nil {
		return nil, err
	}

	n, err := d.Vault.Create(ctx, id, input.Body)
	if err != nil {
		return nil, err
	}

	d.Logger.Info("note created", "id", n.ID)
	d.record(ctx, db.KindCreate, n.ID, "")

	return &CreateOutput{ID: n.ID, Title: n.Name()}, nil
}
