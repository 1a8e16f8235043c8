// Package model defines the value types shared by the universe engine, the
// change reconciler and the execution boundary.
//
// Conventions:
//   - Symbols are opaque strings; a rename produces a new Symbol.
//   - Sets are SymbolSet; anything rendered for humans goes through Sorted.
//   - Enum-like string types (Direction, DelistingKind) are upper case and stable.
package model
