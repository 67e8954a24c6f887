package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/inklings/internal/dates"
	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/vault"
)

// EntryInput contains parameters for the AddEntry operation.
type EntryInput struct {
	ID   string
	Text string
	Date string // YYYY-MM-DD, default: today
}

// EntryOutput contains the result of the AddEntry operation.
type EntryOutput struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	NewSection bool   `json:"new_section"`
}

// AddEntry appends a paragraph to the note's section for the date, creating
// the section directly under the title when it does not exist yet.
func AddEntry(ctx context.Context, d *Deps, input EntryInput) (*EntryOutput, error) {
	id, err := vault.CleanID(input.ID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = d.today()
	} else if !dates.Valid(date) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("date %q must be YYYY-MM-DD", input.Date))
	}

	created, err := d.upsertEntry(ctx, id, date, text)
	if err != nil {
		return nil, err
	}

	d.Logger.Info("entry appended", "id", id, "date", date, "new_section", created)
	detail := "append"
	if created {
		detail = "new_section"
	}
	d.record(ctx, db.KindEntry, id, detail)

	return &EntryOutput{ID: id, Date: date, NewSection: created}, nil
}

func (d *Deps) upsertEntry(ctx context.Context, id, date, text string) (bool, error) {
	d.edits.Lock()
	defer d.edits.Unlock()

	body, err := d.Vault.ReadBody(ctx, id)
	if err != nil {
		return false, err
	}
	updated, created := d.headers.Upsert(body, date, text)
	if err := d.Vault.WriteBody(ctx, id, updated); err != nil {
		return false, err
	}
	return created, nil
}
