package sessions

import "time"

// Repo defines the interface for session storage operations. Sessions are a
// long-lived browser credential and must survive process restarts.
type Repo interface {
	// Create persists a new session for an authenticated GitHub user and
	// returns it with a freshly generated unguessable id
	Create(token, githubUser string) (*Session, error)

	// Get retrieves a session by ID. Absence is ErrSessionNotFound, which
	// callers treat as "unauthenticated", never a server fault
	Get(id string) (*Session, error)

	// Update applies a partial update to a session's billing fields as a
	// unit. An empty update or an unknown id is a no-op, not an error
	Update(id string, upd Update) error

	// FindByCustomerID returns all sessions bound to a billing customer,
	// used for fan-out on subscription-level webhook events
	FindByCustomerID(customerID string) ([]Session, error)

	// UpdateStatusByCustomer sets the subscription status on every session
	// of a customer in one atomic batch, skipping sessions whose status was
	// already set by a newer billing event. Returns how many rows changed
	UpdateStatusByCustomer(customerID, status string, changedAt time.Time) (int64, error)

	// PurgeOlderThan removes sessions not updated within the given age and
	// returns the count removed. Maintenance only, never on the hot path
	PurgeOlderThan(age time.Duration) (int64, error)
}
