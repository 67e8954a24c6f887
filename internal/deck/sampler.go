package deck

import "github.com/hpungsan/inklings/internal/note"

// Rand is the randomness source for sampling. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

// Shuffle permutes ids in place with a Fisher-Yates shuffle.
func Shuffle(ids []string, r Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Sample shuffles the eligible notes and keeps the first quota ids.
// A negative quota is treated as zero.
func Sample(eligible []note.Note, quota int, r Rand) []string {
	ids := make([]string, len(eligible))
	for i, n := range eligible {
		ids[i] = n.ID
	}
	Shuffle(ids, r)

	quota = max(quota, 0)
	if quota < len(ids) {
		ids = ids[:quota]
	}
	return ids
}
