package screening

import "github.com/rotisserie/eris"

var (
	// ErrNotFound is returned for unknown entity or finding ids.
	ErrNotFound = eris.New("screening: not found")
	// ErrValidation is returned when intake input is incomplete.
	ErrValidation = eris.New("screening: validation failed")
	// ErrStoreClosed is returned by mutations after Close.
	ErrStoreClosed = eris.New("screening: store closed")
	// ErrRunSuperseded resolves a run whose completion was voided.
	ErrRunSuperseded = eris.New("screening: run superseded")
)
