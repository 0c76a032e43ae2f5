package detector

// Tally counts occurrences per (artist, title) pair across one
// consistency-check run. It remembers insertion order so that Winner is
// deterministic: on equal counts, the first-tallied pair wins.
type Tally struct {
	counts map[ConfirmedTrack]int
	order  []ConfirmedTrack
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[ConfirmedTrack]int)}
}

// Add records one occurrence of the pair.
func (t *Tally) Add(pair ConfirmedTrack) {
	if _, seen := t.counts[pair]; !seen {
		t.order = append(t.order, pair)
	}
	t.counts[pair]++
}

// Winner returns the pair with the highest count and that count.
// Ties break to the first-tallied pair. An empty tally returns a zero
// pair and count 0.
func (t *Tally) Winner() (ConfirmedTrack, int) {
	var winner ConfirmedTrack
	best := 0
	for _, pair := range t.order {
		if t.counts[pair] > best {
			winner = pair
			best = t.counts[pair]
		}
	}
	return winner, best
}

// Len returns the number of distinct pairs tallied.
func (t *Tally) Len() int {
	return len(t.counts)
}
