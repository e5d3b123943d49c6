package authstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iteebz/spacebrr-api/authstate"
)

func TestInMemoryRepo_PutTake(t *testing.T) {
	repo := authstate.NewInMemoryRepo(authstate.StateTTL)
	t.Cleanup(repo.Stop)

	err := repo.Put("s1", &authstate.StateData{RedirectURI: "https://app/x", CreatedAt: time.Now()})
	require.NoError(t, err)

	data, ok := repo.Take("s1")
	require.True(t, ok)
	require.Equal(t, "https://app/x", data.RedirectURI)

	_, ok = repo.Take("s1")
	require.False(t, ok)
}

func TestInMemoryRepo_PutValidation(t *testing.T) {
	repo := authstate.NewInMemoryRepo(authstate.StateTTL)
	t.Cleanup(repo.Stop)

	require.Error(t, repo.Put("", &authstate.StateData{}))
	require.Error(t, repo.Put("s1", nil))
}

func TestInMemoryRepo_DeleteExpired(t *testing.T) {
	repo := authstate.NewInMemoryRepo(authstate.StateTTL)
	t.Cleanup(repo.Stop)

	now := time.Now()
	require.NoError(t, repo.Put("old", &authstate.StateData{CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Put("fresh", &authstate.StateData{CreatedAt: now}))

	removed := repo.DeleteExpired(now.Add(-authstate.StateTTL))
	require.Equal(t, 1, removed)

	_, ok := repo.Take("old")
	require.False(t, ok)
	_, ok = repo.Take("fresh")
	require.True(t, ok)
}
