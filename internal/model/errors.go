package model

import "github.com/cockroachdb/errors"

// ErrInvariantViolation marks inconsistent input from the universe engine,
// e.g. a delta that both adds and removes the same symbol. Fatal to the step.
var ErrInvariantViolation = errors.New("invariant violation")

// ErrUnexpectedData marks a bar for a symbol that is neither active, pending
// removal, nor delisted in the same step.
var ErrUnexpectedData = errors.New("unexpected data")
