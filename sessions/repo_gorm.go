package sessions

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

var _ Repo = (*GormRepo)(nil)

// GormRepo is the sqlite-backed session store.
type GormRepo struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path and migrates the
// session schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, errors.Wrap(err, "migrating session schema")
	}
	return db, nil
}

// NewGormRepo creates a session repository on an opened database.
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Create persists a new session and returns it
func (r *GormRepo) Create(token, githubUser string) (*Session, error) {
	s := &Session{
		ID:         newSessionID(),
		Token:      token,
		GitHubUser: githubUser,
	}
	if err := r.db.Create(s).Error; err != nil {
		return nil, errors.Wrap(err, "[GormRepo Create] failed to insert session")
	}
	return s, nil
}

// Get retrieves a session by ID
func (r *GormRepo) Get(id string) (*Session, error) {
	if id == "" {
		return nil, apierrors.ErrSessionNotFound
	}
	var s Session
	err := r.db.First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[GormRepo Get] query failed")
	}
	return &s, nil
}

// Update applies a partial update. The single UPDATE statement keeps the
// write linearizable: concurrent updates to one session never interleave
// field-by-field.
func (r *GormRepo) Update(id string, upd Update) error {
	if upd.IsEmpty() {
		return nil
	}

	cols := map[string]interface{}{}
	if upd.CustomerID != nil {
		cols["customer_id"] = *upd.CustomerID
	}
	if upd.SubscriptionStatus != nil {
		cols["subscription_status"] = *upd.SubscriptionStatus
	}
	if upd.StatusChangedAt != nil {
		cols["status_changed_at"] = *upd.StatusChangedAt
	}

	// Unknown ids affect zero rows and are deliberately not an error.
	err := r.db.Model(&Session{}).Where("id = ?", id).Updates(cols).Error
	if err != nil {
		return errors.Wrap(err, "[GormRepo Update] update failed")
	}
	return nil
}

// FindByCustomerID returns all sessions bound to a billing customer. The
// customer_id index keeps this cheap as session count grows.
func (r *GormRepo) FindByCustomerID(customerID string) ([]Session, error) {
	if customerID == "" {
		return nil, nil
	}
	var found []Session
	err := r.db.Where("customer_id = ?", customerID).Find(&found).Error
	if err != nil {
		return nil, errors.Wrap(err, "[GormRepo FindByCustomerID] query failed")
	}
	return found, nil
}

// UpdateStatusByCustomer fans the new status out to every session of the
// customer in one statement, so a concurrent reader never observes a torn
// batch. Sessions already stamped by a newer billing event are skipped.
func (r *GormRepo) UpdateStatusByCustomer(customerID, status string, changedAt time.Time) (int64, error) {
	res := r.db.Model(&Session{}).
		Where("customer_id = ?", customerID).
		Where("status_changed_at IS NULL OR status_changed_at <= ?", changedAt).
		Updates(map[string]interface{}{
			"subscription_status": status,
			"status_changed_at":   changedAt,
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "[GormRepo UpdateStatusByCustomer] update failed")
	}
	return res.RowsAffected, nil
}

// PurgeOlderThan removes sessions idle for longer than age
func (r *GormRepo) PurgeOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res := r.db.Where("updated_at < ?", cutoff).Delete(&Session{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "[GormRepo PurgeOlderThan] delete failed")
	}
	return res.RowsAffected, nil
}
