// Package sessions is the durable store binding a browser-held opaque id to
// a GitHub identity and its billing state.
package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Subscription status values mirrored verbatim from the billing provider.
// The store does not enforce transitions; upstream is the source of truth.
const (
	StatusNone     = "none"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusUnpaid   = "unpaid"
)

// Session represents one authenticated browser identity. The record is
// immutable after creation except for the billing fields and UpdatedAt.
type Session struct {
	ID         string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Token      string `gorm:"type:text;not null" json:"-"` // GitHub access token, never exposed to clients
	GitHubUser string `gorm:"column:github_user;type:varchar(100);not null" json:"github_user"`

	// CustomerID links the session to a billing customer once checkout
	// completes; one customer may own several sessions.
	CustomerID         *string `gorm:"type:varchar(100);index" json:"customer_id"`
	SubscriptionStatus *string `gorm:"type:varchar(20)" json:"subscription_status"`

	// StatusChangedAt carries the billing event's own timestamp so stale
	// redeliveries do not regress the status.
	StatusChangedAt *time.Time `gorm:"type:timestamp" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasActiveSubscription reports whether the session currently mirrors an
// active subscription.
func (s *Session) HasActiveSubscription() bool {
	return s.SubscriptionStatus != nil && *s.SubscriptionStatus == StatusActive
}

// Update is a partial mutation of a session's billing fields. Nil fields
// are left untouched.
type Update struct {
	CustomerID         *string
	SubscriptionStatus *string
	StatusChangedAt    *time.Time
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return u.CustomerID == nil && u.SubscriptionStatus == nil && u.StatusChangedAt == nil
}

// newSessionID creates an unguessable session identifier. 32 bytes of
// entropy, base64url encoded.
func newSessionID() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
