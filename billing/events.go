// Package billing applies externally verified billing events onto local
// session records and talks to the Stripe HTTP API for checkout.
package billing

import (
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

// Event kinds the reconciler understands.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutCompleted carries the session id round-tripped through checkout
// metadata and the billing customer the checkout created.
type CheckoutCompleted struct {
	SessionID  string
	CustomerID string
	Created    time.Time
}

// SubscriptionChanged carries a customer id and the new status string,
// passed through verbatim from upstream.
type SubscriptionChanged struct {
	CustomerID string
	Status     string
	Created    time.Time
}

// Event is one parsed billing webhook delivery. Exactly one of Checkout and
// Subscription is set, matching Type.
type Event struct {
	Type         string
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionChanged
}

// ParseEvent extracts the fields the reconciler needs from a raw webhook
// payload. Event kinds outside the reconciler's contract return
// ErrUnknownEvent; the caller acknowledges those without applying anything.
func ParseEvent(payload []byte) (*Event, error) {
	eventType := gjson.GetBytes(payload, "type").String()
	created := time.Unix(gjson.GetBytes(payload, "created").Int(), 0)

	switch eventType {
	case EventCheckoutCompleted:
		return &Event{
			Type: eventType,
			Checkout: &CheckoutCompleted{
				SessionID:  gjson.GetBytes(payload, "data.object.metadata.session_id").String(),
				CustomerID: gjson.GetBytes(payload, "data.object.customer").String(),
				Created:    created,
			},
		}, nil

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		return &Event{
			Type: eventType,
			Subscription: &SubscriptionChanged{
				CustomerID: gjson.GetBytes(payload, "data.object.customer").String(),
				Status:     gjson.GetBytes(payload, "data.object.status").String(),
				Created:    created,
			},
		}, nil

	default:
		return nil, apierrors.ErrUnknownEvent
	}
}
