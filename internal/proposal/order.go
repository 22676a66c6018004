package proposal

import (
	"fmt"
	"sort"
)

// Ascending is a proposal sequence ordered oldest submission first, ties
// broken by id. New submissions therefore always form a contiguous tail.
// It can only be built through SortAscending or NewAscending.
type Ascending struct {
	records []Proposal
}

func before(a, b *Proposal) bool {
	if !a.Submitted.Equal(b.Submitted) {
		return a.Submitted.Before(b.Submitted)
	}
	return a.ID < b.ID
}

// SortAscending orders records and wraps them. The input slice is not modified.
func SortAscending(records []Proposal) Ascending {
	sorted := make([]Proposal, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return before(&sorted[i], &sorted[j]) })
	return Ascending{records: sorted}
}

// NewAscending wraps records that are already in ascending order and returns
// an error on the first out-of-order pair.
func NewAscending(records []Proposal) (Ascending, error) {
	for i := 1; i < len(records); i++ {
		if !before(&records[i-1], &records[i]) {
			return Ascending{}, fmt.Errorf("records out of order at %d: %s after %s", i, records[i].ID, records[i-1].ID)
		}
	}
	out := make([]Proposal, len(records))
	copy(out, records)
	return Ascending{records: out}, nil
}

// Len returns the number of records.
func (a Ascending) Len() int { return len(a.records) }

// At returns the i-th oldest record.
func (a Ascending) At(i int) Proposal { return a.records[i] }

// Records returns a copy of the records in ascending order.
func (a Ascending) Records() []Proposal {
	out := make([]Proposal, len(a.records))
	copy(out, a.records)
	return out
}

// Tail returns the records after the first k.
func (a Ascending) Tail(k int) []Proposal {
	if k >= len(a.records) {
		return nil
	}
	if k < 0 {
		k = 0
	}
	out := make([]Proposal, len(a.records)-k)
	copy(out, a.records[k:])
	return out
}

// Descending returns the records most recent first.
func (a Ascending) Descending() []Proposal {
	out := make([]Proposal, len(a.records))
	for i, r := range a.records {
		out[len(a.records)-1-i] = r
	}
	return out
}
