package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores and backend
// adapters. Services translate them into domain errors.
//
//   - ErrNotFound: no record for the key (PKCE flow, task row)
//   - ErrExpired: the record existed but its TTL elapsed
//   - ErrInvalidState: the record is unusable for the requested operation
//   - ErrUnavailable: the backing service could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
