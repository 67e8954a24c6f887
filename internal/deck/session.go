package deck

import (
	"slices"
	"time"
)

// SessionDeck is one calendar day's sample.
//
// NoteIDs only ever shrinks (or has an id swapped on rename) until a deck for
// a new date replaces it. Total keeps the count chosen at sampling time.
type SessionDeck struct {
	ID      string    `json:"deck_id"`
	Date    string    `json:"date"`
	NoteIDs []string  `json:"note_ids"`
	Total   int       `json:"total"`
	BuiltAt time.Time `json:"built_at"`
}

// StaleFor reports whether d cannot serve as the deck for today.
func (d *SessionDeck) StaleFor(today string) bool {
	return d == nil || d.Date != today
}

// Remaining returns the number of ids left in the deck.
func (d *SessionDeck) Remaining() int {
	if d == nil {
		return 0
	}
	return len(d.NoteIDs)
}

// Remove drops id, reporting whether the deck changed.
func (d *SessionDeck) Remove(id string) bool {
	i := slices.Index(d.NoteIDs, id)
	if i < 0 {
		return false
	}
	d.NoteIDs = slices.Delete(d.NoteIDs, i, i+1)
	return true
}

// Replace swaps oldID for newID in place, reporting whether the deck changed.
// When newID is already dealt, oldID is dropped instead so no id repeats.
func (d *SessionDeck) Replace(oldID, newID string) bool {
	if oldID == newID {
		return false
	}
	i := slices.Index(d.NoteIDs, oldID)
	if i < 0 {
		return false
	}
	if slices.Contains(d.NoteIDs, newID) {
		d.NoteIDs = slices.Delete(d.NoteIDs, i, i+1)
		return true
	}
	d.NoteIDs[i] = newID
	return true
}

// Prune drops ids that resolves rejects and returns them.
func (d *SessionDeck) Prune(resolves func(id string) bool) []string {
	var dropped []string
	d.NoteIDs = slices.DeleteFunc(d.NoteIDs, func(id string) bool {
		if resolves(id) {
			return false
		}
		dropped = append(dropped, id)
		return true
	})
	return dropped
}

// Stats is the progress through today's deck.
type Stats struct {
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// StatsFor returns d's progress, or zeros when d is not today's deck.
func (d *SessionDeck) StatsFor(today string) Stats {
	if d.StaleFor(today) {
		return Stats{}
	}
	total := d.Total
	if total == 0 {
		total = len(d.NoteIDs)
	}
	return Stats{Total: total, Remaining: len(d.NoteIDs)}
}
