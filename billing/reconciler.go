package billing

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
	"github.com/iteebz/spacebrr-api/sessions"
)

// Reconciler applies billing-event truth onto the session store. Events
// reach it only after the HTTP layer has verified their signature; the
// reconciler trusts the payload but never trusts the referenced ids to
// exist.
type Reconciler struct {
	store  sessions.Repo
	logger zerolog.Logger

	// mu guards customers; each customer gets its own lock so fan-outs for
	// one customer are serialized without blocking other customers. Entries
	// are never freed, so the map holds one mutex per customer id ever seen;
	// that count is bounded by the paying-customer population.
	mu        sync.Mutex
	customers map[string]*sync.Mutex
}

// NewReconciler creates a Reconciler over the given session store.
func NewReconciler(store sessions.Repo, logger zerolog.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("[NewReconciler] store is required")
	}
	return &Reconciler{
		store:     store,
		logger:    logger.With().Str("component", "reconciler").Logger(),
		customers: make(map[string]*sync.Mutex),
	}, nil
}

// Apply dispatches one parsed event. Every return path other than a store
// failure is success from the billing provider's point of view: there is
// nothing actionable for it to retry.
func (r *Reconciler) Apply(ev *Event) error {
	switch {
	case ev.Checkout != nil:
		return r.ApplyCheckoutCompleted(*ev.Checkout)
	case ev.Subscription != nil:
		return r.ApplySubscriptionChanged(*ev.Subscription)
	default:
		return errors.New("[Reconciler Apply] event carries no payload")
	}
}

// ApplyCheckoutCompleted binds the billing customer to the session that
// started the checkout and marks it active. A session id that no longer
// resolves (purged, or forged metadata) is a silent no-op: the reconciler
// only mutates sessions it issued, never creates them.
func (r *Reconciler) ApplyCheckoutCompleted(ev CheckoutCompleted) error {
	unlock := r.lockCustomer(ev.CustomerID)
	defer unlock()

	session, err := r.store.Get(ev.SessionID)
	if errors.Is(err, apierrors.ErrSessionNotFound) {
		r.logger.Debug().
			Str("session_id", ev.SessionID).
			Str("customer_id", ev.CustomerID).
			Msg("checkout completed for unknown session, ignoring")
		return nil
	}
	if err != nil {
		// A store fault is retryable; only a missing session is a no-op.
		return errors.Wrap(err, "[ApplyCheckoutCompleted] session lookup failed")
	}

	upd := sessions.Update{CustomerID: &ev.CustomerID}
	// A redelivered checkout must not regress a status set by a newer
	// subscription event.
	if session.StatusChangedAt == nil || !session.StatusChangedAt.After(ev.Created) {
		status := sessions.StatusActive
		upd.SubscriptionStatus = &status
		upd.StatusChangedAt = &ev.Created
	}
	if err := r.store.Update(ev.SessionID, upd); err != nil {
		return errors.Wrap(err, "[ApplyCheckoutCompleted] session update failed")
	}

	r.logger.Info().
		Str("session_id", ev.SessionID).
		Str("customer_id", ev.CustomerID).
		Msg("checkout completed, session bound to customer")
	return nil
}

// ApplySubscriptionChanged fans the new status out to every session bound
// to the customer. Zero matches is valid: the customer never completed
// checkout through this gateway, or the sessions were purged.
func (r *Reconciler) ApplySubscriptionChanged(ev SubscriptionChanged) error {
	unlock := r.lockCustomer(ev.CustomerID)
	defer unlock()

	changed, err := r.store.UpdateStatusByCustomer(ev.CustomerID, ev.Status, ev.Created)
	if err != nil {
		return errors.Wrap(err, "[ApplySubscriptionChanged] fan-out update failed")
	}

	if changed == 0 {
		r.logger.Debug().
			Str("customer_id", ev.CustomerID).
			Str("status", ev.Status).
			Msg("subscription event for customer with no current sessions")
		return nil
	}

	r.logger.Info().
		Str("customer_id", ev.CustomerID).
		Str("status", ev.Status).
		Int64("sessions", changed).
		Msg("subscription status applied")
	return nil
}

// lockCustomer serializes event application per customer id. No
// cross-customer ordering is required.
func (r *Reconciler) lockCustomer(customerID string) func() {
	r.mu.Lock()
	lock, ok := r.customers[customerID]
	if !ok {
		lock = &sync.Mutex{}
		r.customers[customerID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
