package authstate

import "time"

// StateData records one in-flight authorization attempt. RedirectURI is the
// optional frontend target carried through the OAuth round trip.
type StateData struct {
	RedirectURI string
	CreatedAt   time.Time
}

// Repo defines storage for OAuth state tokens. States are short-lived and
// single-use; durability across restarts is not required.
type Repo interface {
	// Put stores a state token
	Put(state string, data *StateData) error

	// Take atomically removes and returns a state token. The second return
	// is false when the token was never issued or was already taken.
	Take(state string) (*StateData, bool)

	// DeleteExpired removes all states created before cutoff and returns
	// how many were removed
	DeleteExpired(cutoff time.Time) int
}
