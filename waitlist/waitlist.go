// Package waitlist captures signup emails ahead of access.
package waitlist

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one captured waitlist signup. Email is unique; re-submitting the
// same address is a no-op.
type Entry struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email     string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Repo is the sqlite-backed waitlist store.
type Repo struct {
	db *gorm.DB
}

// NewRepo migrates the waitlist schema and returns a repository.
func NewRepo(db *gorm.DB) (*Repo, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, errors.Wrap(err, "migrating waitlist schema")
	}
	return &Repo{db: db}, nil
}

// Add records an email. Duplicate submissions succeed silently.
func (r *Repo) Add(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("invalid email")
	}

	entry := &Entry{
		ID:    uuid.NewString(),
		Email: email,
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
	if err != nil {
		return errors.Wrap(err, "[Waitlist Add] insert failed")
	}
	return nil
}

// Count returns how many signups have been captured.
func (r *Repo) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&Entry{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "[Waitlist Count] query failed")
	}
	return n, nil
}
