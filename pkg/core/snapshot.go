package core

import (
	"sort"

	"github.com/samber/lo"
)

// Snapshot is a set of contract symbols. Symbols compare by exact string match.
type Snapshot map[string]struct{}

// NewSnapshot builds a snapshot from the given symbols, duplicates are collapsed
func NewSnapshot(symbols ...string) Snapshot {
	snapshot := make(Snapshot, len(symbols))
	for _, symbol := range symbols {
		snapshot[symbol] = struct{}{}
	}
	return snapshot
}

// Len returns the number of symbols in the snapshot
func (s Snapshot) Len() int {
	return len(s)
}

// IsEmpty reports whether the snapshot has no symbols
func (s Snapshot) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether symbol is part of the snapshot
func (s Snapshot) Contains(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// Symbols returns the symbols sorted in ascending order
func (s Snapshot) Symbols() []string {
	symbols := lo.Keys(s)
	sort.Strings(symbols)
	return symbols
}

// Difference returns the sorted symbols of s that are not in other (s − other)
func (s Snapshot) Difference(other Snapshot) []string {
	added := lo.Filter(lo.Keys(s), func(symbol string, _ int) bool {
		return !other.Contains(symbol)
	})
	sort.Strings(added)
	return added
}

// Union returns a new snapshot holding the symbols of both s and other
func (s Snapshot) Union(other Snapshot) Snapshot {
	union := make(Snapshot, len(s)+len(other))
	for symbol := range s {
		union[symbol] = struct{}{}
	}
	for symbol := range other {
		union[symbol] = struct{}{}
	}
	return union
}

// Clone returns an independent copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	return s.Union(nil)
}
