// Package deck selects and tracks the day's review deck.
package deck

import "github.com/hpungsan/inklings/internal/note"

// IsEligible reports whether n can be dealt today: it sits directly in folder
// and is not snoozed past today.
//
// A malformed snoozed_until still compares as a string.
func IsEligible(n note.Note, folder, today string) bool {
	if n.ParentFolder != note.NormalizeFolder(folder) {
		return false
	}
	snoozed := n.Metadata.SnoozedUntil()
	return !snoozed.Present || snoozed.Raw <= today
}

// Eligible filters corpus down to eligible notes, keeping corpus order.
func Eligible(corpus []note.Note, folder, today string) []note.Note {
	var out []note.Note
	for _, n := range corpus {
		if IsEligible(n, folder, today) {
			out = append(out, n)
		}
	}
	return out
}
