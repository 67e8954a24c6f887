package ops

import (
	"context"

	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/note"
	"github.com/hpungsan/inklings/internal/vault"
)

// RenameInput contains parameters for the Rename operation.
type RenameInput struct {
	ID    string
	Title string // new title; the note stays in its folder
}

// RenameOutput contains the result of the Rename operation.
type RenameOutput struct {
	ID      string `json:"id"`
	OldID   string `json:"old_id"`
	Changed bool   `json:"changed"`
}

// Rename retitles a note's file in place and keeps today's deck pointing at it.
func Rename(ctx context.Context, d *Deps, input RenameInput) (*RenameOutput, error) {
	id, err := vault.CleanID(input.ID)
	if err != nil {
		return nil, err
	}

	newID, err := note.PathFor(note.ParentFolder(id), input.Title)
	if err != nil {
		return nil, err
	}
	if newID == id {
		return &RenameOutput{ID: id, OldID: id}, nil
	}

	if err := d.move(ctx, id, newID); err != nil {
		return nil, err
	}

	d.Logger.Info("note renamed", "from", id, "to", newID)
	d.record(ctx, db.KindRename, newID, id)

	return &RenameOutput{ID: newID, OldID: id, Changed: true}, nil
}

func (d *Deps) move(ctx context.Context, id, newID string) error {
	d.edits.Lock()
	defer d.edits.Unlock()

	if err := d.Vault.Rename(ctx, id, newID); err != nil {
		return err
	}
	return ApplyRename(ctx, d, id, newID)
}

// ApplyRename points today's deck and earlier activity at newID after the
// file has moved, whoever moved it.
func ApplyRename(ctx context.Context, d *Deps, oldID, newID string) error {
	if _, _, err := d.deck.ReplaceID(ctx, oldID, newID); err != nil {
		return err
	}
	return db.RenameActivityNote(ctx, d.DB, oldID, newID)
}
