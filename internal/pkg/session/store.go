// internal/pkg/session/store.go
package session

import "context"

// Store holds the single refresh-session marker per user: a mapping from
// user id to the session id of the currently valid refresh token. The
// marker is the sole source of truth for refresh validity across server
// instances, so implementations must be backed by shared storage and must
// never be fronted by an in-process cache.
type Store interface {
	// Put unconditionally overwrites the marker for the user. Any refresh
	// token bound to the previous session id becomes permanently unusable.
	Put(ctx context.Context, userID int64, sessionID string) error

	// Get returns the current session id, or ErrNoSession if none is stored.
	Get(ctx context.Context, userID int64) (string, error)

	// CompareAndPut replaces the marker with newSessionID only if the stored
	// value still equals expected. The check and the write happen as one
	// atomic step inside the store; splitting them into separate round-trips
	// would let two concurrent rotations both succeed.
	CompareAndPut(ctx context.Context, userID int64, expected, newSessionID string) (bool, error)

	// Delete removes the marker. Deleting an absent marker is not an error.
	Delete(ctx context.Context, userID int64) error
}
