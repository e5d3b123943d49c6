package repofakes

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/iteebz/spacebrr-api/internal/errors"
	"github.com/iteebz/spacebrr-api/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session store for tests.
type FakeSessionRepo struct {
	lock  sync.RWMutex
	store map[string]*sessions.Session
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		store: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Create(token, githubUser string) (*sessions.Session, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	b := make([]byte, 32)
	rand.Read(b)
	now := time.Now()
	s := &sessions.Session{
		ID:         base64.RawURLEncoding.EncodeToString(b),
		Token:      token,
		GitHubUser: githubUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sr.store[s.ID] = s
	return copySession(s), nil
}

func (sr *FakeSessionRepo) Get(id string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	s, ok := sr.store[id]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return copySession(s), nil
}

func (sr *FakeSessionRepo) Update(id string, upd sessions.Update) error {
	if upd.IsEmpty() {
		return nil
	}

	sr.lock.Lock()
	defer sr.lock.Unlock()

	s, ok := sr.store[id]
	if !ok {
		return nil // unknown ids are a no-op, matching the durable store
	}
	if upd.CustomerID != nil {
		s.CustomerID = upd.CustomerID
	}
	if upd.SubscriptionStatus != nil {
		s.SubscriptionStatus = upd.SubscriptionStatus
	}
	if upd.StatusChangedAt != nil {
		s.StatusChangedAt = upd.StatusChangedAt
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (sr *FakeSessionRepo) FindByCustomerID(customerID string) ([]sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	var found []sessions.Session
	for _, s := range sr.store {
		if s.CustomerID != nil && *s.CustomerID == customerID {
			found = append(found, *copySession(s))
		}
	}
	return found, nil
}

func (sr *FakeSessionRepo) UpdateStatusByCustomer(customerID, status string, changedAt time.Time) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	var changed int64
	for _, s := range sr.store {
		if s.CustomerID == nil || *s.CustomerID != customerID {
			continue
		}
		if s.StatusChangedAt != nil && s.StatusChangedAt.After(changedAt) {
			continue
		}
		statusCopy := status
		changedAtCopy := changedAt
		s.SubscriptionStatus = &statusCopy
		s.StatusChangedAt = &changedAtCopy
		s.UpdatedAt = time.Now()
		changed++
	}
	return changed, nil
}

func (sr *FakeSessionRepo) PurgeOlderThan(age time.Duration) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	cutoff := time.Now().Add(-age)
	var removed int64
	for id, s := range sr.store {
		if s.UpdatedAt.Before(cutoff) {
			delete(sr.store, id)
			removed++
		}
	}
	return removed, nil
}

// SetUpdatedAt backdates a session for retention tests.
func (sr *FakeSessionRepo) SetUpdatedAt(id string, at time.Time) {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	if s, ok := sr.store[id]; ok {
		s.UpdatedAt = at
	}
}

func copySession(s *sessions.Session) *sessions.Session {
	dup := *s
	return &dup
}
