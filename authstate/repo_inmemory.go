package authstate

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// reapInterval controls how often the background reaper removes expired
// states.
const reapInterval = 5 * time.Minute

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. A restart drops in-flight logins, which is acceptable: the
// browser simply starts the flow again.
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]*StateData
	stop   chan struct{}
}

// NewInMemoryRepo creates an in-memory state repository and starts a
// background goroutine that reaps states older than ttl. Call Stop to
// terminate it.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	r := &InMemoryRepo{
		states: make(map[string]*StateData),
		stop:   make(chan struct{}),
	}
	go r.reapLoop(ttl)
	return r
}

// Stop terminates the background reaper goroutine.
func (r *InMemoryRepo) Stop() {
	close(r.stop)
}

func (r *InMemoryRepo) reapLoop(ttl time.Duration) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.DeleteExpired(time.Now().Add(-ttl))
		case <-r.stop:
			return
		}
	}
}

// Put stores a state token
func (r *InMemoryRepo) Put(state string, data *StateData) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if data == nil {
		return errors.New("data cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to prevent external modifications
	r.states[state] = &StateData{
		RedirectURI: data.RedirectURI,
		CreatedAt:   data.CreatedAt,
	}
	return nil
}

// Take removes and returns a state token. The remove-on-read is atomic per
// key: of two concurrent Take calls for the same token, at most one
// observes it.
func (r *InMemoryRepo) Take(state string) (*StateData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists := r.states[state]
	if !exists {
		return nil, false
	}
	delete(r.states, state)
	return data, true
}

// DeleteExpired removes states created before cutoff
func (r *InMemoryRepo) DeleteExpired(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for state, data := range r.states {
		if data.CreatedAt.Before(cutoff) {
			delete(r.states, state)
			removed++
		}
	}
	return removed
}
