// Package authstate issues and consumes the single-use anti-CSRF state
// tokens that bind an OAuth authorization request to its callback.
package authstate

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"

	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

const (
	// StateTTL is how long a state token remains consumable.
	StateTTL = 10 * time.Minute

	stateTokenLength = 32
)

// Tracker issues unguessable state tokens and enforces their single-use,
// time-bounded consumption.
type Tracker struct {
	repo    Repo
	nowTime func() time.Time
}

// TrackerOption defines a function type to modify the Tracker instance.
type TrackerOption func(*Tracker)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.nowTime = nowFunc
	}
}

// NewTracker creates a Tracker on top of the given repo.
func NewTracker(repo Repo, options ...TrackerOption) (*Tracker, error) {
	if repo == nil {
		return nil, errors.New("[NewTracker] repo is required")
	}

	t := &Tracker{
		repo:    repo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// Issue generates a state token to embed in the outbound authorization URL.
// redirectURI is the optional frontend target to restore after the callback.
func (t *Tracker) Issue(redirectURI string) (string, error) {
	state := generateRandomString(stateTokenLength)
	err := t.repo.Put(state, &StateData{
		RedirectURI: redirectURI,
		CreatedAt:   t.nowTime(),
	})
	if err != nil {
		return "", errors.Wrap(err, "[Tracker Issue] failed to store state")
	}
	return state, nil
}

// Consume validates and removes a state token, returning the redirect
// target stored at issue time. A missing token yields ErrInvalidState. A
// token older than StateTTL is removed and yields ErrStateExpired; any
// retry with the same value then sees ErrInvalidState. Consumption removes
// the entry on every path, so a state value can never be replayed.
func (t *Tracker) Consume(state string) (string, error) {
	data, ok := t.repo.Take(state)
	if !ok {
		return "", apierrors.ErrInvalidState
	}
	if t.nowTime().Sub(data.CreatedAt) > StateTTL {
		return "", apierrors.ErrStateExpired
	}
	return data.RedirectURI, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
