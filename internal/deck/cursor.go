package deck

import (
	"slices"
	"sync"
)

// Cursor walks a session's deck. Position runs from 0 to len(ids); the last
// position means the deck is exhausted. Safe for concurrent use.
type Cursor struct {
	mu    sync.Mutex
	ids   []string
	index int
}

// NewCursor starts a cursor at the first id.
func NewCursor(ids []string) *Cursor {
	return &Cursor{ids: slices.Clone(ids)}
}

// Reset replaces the ids and rewinds to the start.
func (c *Cursor) Reset(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = slices.Clone(ids)
	c.index = 0
}

// Current returns the id under the cursor, false when exhausted.
func (c *Cursor) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current()
}

func (c *Cursor) current() (string, bool) {
	if c.index >= len(c.ids) {
		return "", false
	}
	return c.ids[c.index], true
}

// Next advances one step. Stepping past the last id exhausts the cursor.
func (c *Cursor) Next() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index < len(c.ids)-1 {
		c.index++
	} else {
		c.index = len(c.ids)
	}
	return c.current()
}

// Prev steps back one, stopping at the first id.
func (c *Cursor) Prev() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index > 0 {
		c.index--
	}
	return c.current()
}

// Remove drops id, keeping the cursor on the note that followed it.
func (c *Cursor) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.ids, id)
	if i < 0 {
		return false
	}
	c.ids = slices.Delete(c.ids, i, i+1)
	if i < c.index {
		c.index--
	}
	c.index = min(c.index, len(c.ids))
	return true
}

// Replace swaps oldID for newID in place. When newID is already held, oldID
// is dropped instead.
func (c *Cursor) Replace(oldID, newID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.ids, oldID)
	if i < 0 || oldID == newID {
		return false
	}
	if slices.Contains(c.ids, newID) {
		c.ids = slices.Delete(c.ids, i, i+1)
		if i < c.index {
			c.index--
		}
		c.index = min(c.index, len(c.ids))
		return true
	}
	c.ids[i] = newID
	return true
}

// Seek moves the cursor onto id if present.
func (c *Cursor) Seek(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.ids, id)
	if i < 0 {
		return false
	}
	c.index = i
	return true
}

// Position is a snapshot of the cursor.
type Position struct {
	Index     int  `json:"index"`
	Length    int  `json:"length"`
	Exhausted bool `json:"exhausted"`
}

// Position returns the current position.
func (c *Cursor) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Position{Index: c.index, Length: len(c.ids), Exhausted: c.index >= len(c.ids)}
}

// Exhausted reports whether the cursor is past the last id.
func (c *Cursor) Exhausted() bool {
	return c.Position().Exhausted
}

// IDs returns a copy of the ids.
func (c *Cursor) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.ids)
}
