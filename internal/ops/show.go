package ops

import (
	"context"
	"slices"

	"github.com/hpungsan/inklings/internal/markdown"
	"github.com/hpungsan/inklings/internal/note"
	"github.com/hpungsan/inklings/internal/vault"
)

// ShowInput contains parameters for the Show operation.
type ShowInput struct {
	ID string
}

// ShowOutput is a single note.
type ShowOutput struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	ParentFolder string        `json:"parent_folder"`
	Metadata     note.Metadata `json:"metadata"`
	SnoozedUntil string        `json:"snoozed_until,omitempty"`
	Sections     []string      `json:"sections"`
	Body         string        `json:"body"`
}

// Show returns a note with its metadata and the dates of its sections.
func Show(ctx context.Context, d *Deps, input ShowInput) (*ShowOutput, error) {
	id, err := vault.CleanID(input.ID)
	if err != nil {
		return nil, err
	}

	n, err := d.Vault.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := d.Vault.ReadBody(ctx, id)
	if err != nil {
		return nil, err
	}

	title := markdown.Title(body)
	if title == "" {
		title = n.Name()
	}

	sectionDates := []string{}
	for _, s := range d.headers.Sections(markdown.Lines(body)) {
		if !slices.Contains(sectionDates, s.Date) {
			sectionDates = append(sectionDates, s.Date)
		}
	}

	meta := n.Metadata
	if meta == nil {
		meta = note.Metadata{}
	}

	return &ShowOutput{
		ID:           n.ID,
		Title:        title,
		ParentFolder: n.ParentFolder,
		Metadata:     meta,
		SnoozedUntil: n.Metadata.SnoozedUntil().Raw,
		Sections:     sectionDates,
		Body:         body,
	}, nil
}
