package model

import "sort"

// Symbol is an opaque, immutable instrument identity. A ticker rename yields
// a new Symbol; the two are never merged.
type Symbol string

// SymbolSet is an unordered set of symbols. The zero value is not usable;
// construct with NewSymbolSet.
type SymbolSet map[Symbol]struct{}

func NewSymbolSet(syms ...Symbol) SymbolSet {
	s := make(SymbolSet, len(syms))
	for _, sym := range syms {
		s[sym] = struct{}{}
	}
	return s
}

func (s SymbolSet) Add(sym Symbol)    { s[sym] = struct{}{} }
func (s SymbolSet) Remove(sym Symbol) { delete(s, sym) }
func (s SymbolSet) Len() int          { return len(s) }

// Contains is safe on a nil set.
func (s SymbolSet) Contains(sym Symbol) bool {
	_, ok := s[sym]
	return ok
}

func (s SymbolSet) Clone() SymbolSet {
	out := make(SymbolSet, len(s))
	for sym := range s {
		out[sym] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s SymbolSet) Sorted() []Symbol {
	out := make([]Symbol, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s SymbolSet) Union(other SymbolSet) SymbolSet {
	out := s.Clone()
	for sym := range other {
		out[sym] = struct{}{}
	}
	return out
}

// Strings is a convenience for logging and JSON output.
func (s SymbolSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, sym := range sorted {
		out[i] = string(sym)
	}
	return out
}
