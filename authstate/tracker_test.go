package authstate_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iteebz/spacebrr-api/authstate"
	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

func newTestTracker(t *testing.T, nowFunc func() time.Time) (*authstate.Tracker, *authstate.InMemoryRepo) {
	t.Helper()

	repo := authstate.NewInMemoryRepo(authstate.StateTTL)
	t.Cleanup(repo.Stop)

	opts := []authstate.TrackerOption{}
	if nowFunc != nil {
		opts = append(opts, authstate.WithNowTime(nowFunc))
	}
	tracker, err := authstate.NewTracker(repo, opts...)
	require.NoError(t, err)
	return tracker, repo
}

func TestTracker_IssueConsume(t *testing.T) {
	tracker, _ := newTestTracker(t, nil)

	state, err := tracker.Issue("https://app/x")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	redirect, err := tracker.Consume(state)
	require.NoError(t, err)
	require.Equal(t, "https://app/x", redirect)
}

func TestTracker_SingleUse(t *testing.T) {
	tracker, _ := newTestTracker(t, nil)

	state, err := tracker.Issue("")
	require.NoError(t, err)

	_, err = tracker.Consume(state)
	require.NoError(t, err)

	_, err = tracker.Consume(state)
	require.ErrorIs(t, err, apierrors.ErrInvalidState)
}

func TestTracker_UnknownState(t *testing.T) {
	tracker, _ := newTestTracker(t, nil)

	_, err := tracker.Consume("never-issued")
	require.ErrorIs(t, err, apierrors.ErrInvalidState)
}

func TestTracker_Expiry(t *testing.T) {
	now := time.Now()
	current := now
	tracker, _ := newTestTracker(t, func() time.Time { return current })

	state, err := tracker.Issue("https://app/x")
	require.NoError(t, err)

	current = now.Add(authstate.StateTTL + time.Second)

	_, err = tracker.Consume(state)
	require.ErrorIs(t, err, apierrors.ErrStateExpired)

	// The expired entry was removed on first use, so a retry is
	// indistinguishable from a never-issued state.
	_, err = tracker.Consume(state)
	require.ErrorIs(t, err, apierrors.ErrInvalidState)
}

func TestTracker_ConsumeJustBeforeExpiry(t *testing.T) {
	now := time.Now()
	current := now
	tracker, _ := newTestTracker(t, func() time.Time { return current })

	state, err := tracker.Issue("")
	require.NoError(t, err)

	current = now.Add(authstate.StateTTL - time.Second)

	_, err = tracker.Consume(state)
	require.NoError(t, err)
}

func TestTracker_ConcurrentConsume(t *testing.T) {
	tracker, _ := newTestTracker(t, nil)

	state, err := tracker.Issue("")
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	results := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.Consume(state)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, apierrors.ErrInvalidState)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one consume may win")
}

func TestTracker_StatesAreUnique(t *testing.T) {
	tracker, _ := newTestTracker(t, nil)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		state, err := tracker.Issue("")
		require.NoError(t, err)
		require.False(t, seen[state], "state tokens must not repeat")
		seen[state] = true
	}
}
