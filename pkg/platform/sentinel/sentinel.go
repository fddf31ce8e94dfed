package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so the identifier service can translate them into domain errors.
//
//   - ErrNotFound: record, counter, cursor or namespace does not exist
//   - ErrConflict: a unique key (identifier value, system id) is already taken
//   - ErrInvalidState: a conditional update found the record in another status
//   - ErrUnavailable: the backing service (database, redis, broker) is down
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
