package model

import "github.com/cockroachdb/errors"

// MembershipDelta is the added/removed diff produced by one universe
// resolution. Added and Removed must be disjoint.
type MembershipDelta struct {
	Added   SymbolSet
	Removed SymbolSet
}

func NewMembershipDelta(added, removed []Symbol) MembershipDelta {
	return MembershipDelta{
		Added:   NewSymbolSet(added...),
		Removed: NewSymbolSet(removed...),
	}
}

// Diff computes the delta that turns prev into next.
func Diff(prev, next SymbolSet) MembershipDelta {
	d := MembershipDelta{Added: NewSymbolSet(), Removed: NewSymbolSet()}
	for sym := range next {
		if !prev.Contains(sym) {
			d.Added.Add(sym)
		}
	}
	for sym := range prev {
		if !next.Contains(sym) {
			d.Removed.Add(sym)
		}
	}
	return d
}

func (d MembershipDelta) IsEmpty() bool {
	return d.Added.Len() == 0 && d.Removed.Len() == 0
}

func (d MembershipDelta) Clone() MembershipDelta {
	return MembershipDelta{Added: d.Added.Clone(), Removed: d.Removed.Clone()}
}

// Validate reports an overlap between Added and Removed.
func (d MembershipDelta) Validate() error {
	var overlap []Symbol
	for _, sym := range d.Added.Sorted() {
		if d.Removed.Contains(sym) {
			overlap = append(overlap, sym)
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	err := errors.Newf("membership delta adds and removes %v", overlap)
	return errors.Mark(err, ErrInvariantViolation)
}
