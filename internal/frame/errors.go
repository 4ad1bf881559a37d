package frame

import "github.com/rotisserie/eris"

// Pipeline error kinds. Stages wrap these so callers can branch on the
// failure class with eris.Is instead of string matching.
var (
	// ErrMissingInput marks a required source file absent at its expected path.
	ErrMissingInput = eris.New("missing input")

	// ErrSchemaViolation marks a required column absent from a loaded table.
	ErrSchemaViolation = eris.New("schema violation")

	// ErrUnparseableValue marks a value that could not be normalized.
	// Coordinate normalization recovers from this locally by substituting
	// the missing marker; it is surfaced only where recovery is impossible.
	ErrUnparseableValue = eris.New("unparseable value")

	// ErrEmptyResult marks a stage that produced zero rows. Not a failure of
	// the stage itself, but downstream stages must short-circuit on it
	// instead of crashing on empty input.
	ErrEmptyResult = eris.New("empty result")
)
