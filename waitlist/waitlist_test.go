package waitlist_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iteebz/spacebrr-api/waitlist"
)

func newTestRepo(t *testing.T) *waitlist.Repo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "waitlist.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo, err := waitlist.NewRepo(db)
	require.NoError(t, err)
	return repo
}

func TestAddAndCount(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Add("someone@example.com"))
	require.NoError(t, repo.Add("other@example.com"))

	n, err := repo.Count()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestAddNormalizes(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Add("  Someone@Example.COM  "))
	require.NoError(t, repo.Add("someone@example.com"))

	// Case and whitespace variants collapse to one entry.
	n, err := repo.Count()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestAddRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	require.Error(t, repo.Add(""))
	require.Error(t, repo.Add("   "))
	require.Error(t, repo.Add("not-an-email"))

	n, err := repo.Count()
	require.NoError(t, err)
	require.Zero(t, n)
}
