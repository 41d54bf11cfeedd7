package ledger

import "errors"

var (
	// ErrNotFound is returned when a lookup by id matches no row, or when a
	// win references a user or prize that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// primary key, e.g. adding a user_id twice.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNoPrizesAvailable is returned by PickRandomUnusedPrize when every
	// prize has been marked used (or none were ever added).
	ErrNoPrizesAvailable = errors.New("no prizes available")
)
