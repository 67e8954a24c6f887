package watch

import (
	"time"

	"github.com/hpungsan/inklings/internal/note"
)

// Rename is a departure and arrival judged to be the same note.
type Rename struct {
	OldID string
	NewID string
}

type departure struct {
	id       string
	deadline time.Time
	arrivals []string
}

// Pairer matches note departures (rename or remove) with arrivals (create)
// in the same folder. A departure followed within the window by exactly one
// arrival, which no other pending departure also claims, is a rename.
// Pairer is not safe for concurrent use.
type Pairer struct {
	window  time.Duration
	pending []*departure
}

// NewPairer creates a Pairer with the given window.
func NewPairer(window time.Duration) *Pairer {
	return &Pairer{window: window}
}

// Depart records that id left its path at the given time.
func (p *Pairer) Depart(id string, at time.Time) {
	for _, d := range p.pending {
		if d.id == id {
			d.deadline = at.Add(p.window)
			d.arrivals = nil
			return
		}
	}
	p.pending = append(p.pending, &departure{id: id, deadline: at.Add(p.window)})
}

// Arrive records that id appeared at the given time. An arrival at a path
// that just departed cancels that departure: the file was replaced, not moved.
func (p *Pairer) Arrive(id string, at time.Time) {
	kept := p.pending[:0]
	for _, d := range p.pending {
		if d.id == id {
			continue
		}
		if !at.After(d.deadline) && note.ParentFolder(d.id) == note.ParentFolder(id) {
			d.arrivals = appendUnique(d.arrivals, id)
		}
		kept = append(kept, d)
	}
	p.pending = kept
}

// Flush resolves every departure whose window closed at or before now and
// returns the ones that paired.
func (p *Pairer) Flush(now time.Time) []Rename {
	claims := make(map[string]int)
	for _, d := range p.pending {
		for _, a := range d.arrivals {
			claims[a]++
		}
	}

	var renames []Rename
	kept := p.pending[:0]
	for _, d := range p.pending {
		if now.Before(d.deadline) {
			kept = append(kept, d)
			continue
		}
		if len(d.arrivals) == 1 && claims[d.arrivals[0]] == 1 {
			renames = append(renames, Rename{OldID: d.id, NewID: d.arrivals[0]})
		}
	}
	p.pending = kept
	return renames
}

// Pending reports how many departures are still waiting for their window to close.
func (p *Pairer) Pending() int {
	return len(p.pending)
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
