package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iteebz/spacebrr-api/billing"
	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	payload := []byte(`{
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"customer": "cus_1",
			"metadata": {"session_id": "sess_abc"}
		}}
	}`)

	ev, err := billing.ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, billing.EventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Checkout)
	require.Equal(t, "sess_abc", ev.Checkout.SessionID)
	require.Equal(t, "cus_1", ev.Checkout.CustomerID)
	require.Equal(t, time.Unix(1700000000, 0), ev.Checkout.Created)
	require.Nil(t, ev.Subscription)
}

func TestParseEvent_SubscriptionChanged(t *testing.T) {
	for _, eventType := range []string{
		billing.EventSubscriptionUpdated,
		billing.EventSubscriptionDeleted,
	} {
		payload := []byte(`{
			"type": "` + eventType + `",
			"created": 1700000100,
			"data": {"object": {"customer": "cus_2", "status": "past_due"}}
		}`)

		ev, err := billing.ParseEvent(payload)
		require.NoError(t, err)
		require.NotNil(t, ev.Subscription)
		require.Equal(t, "cus_2", ev.Subscription.CustomerID)
		require.Equal(t, "past_due", ev.Subscription.Status)
	}
}

func TestParseEvent_UnknownType(t *testing.T) {
	_, err := billing.ParseEvent([]byte(`{"type":"invoice.paid"}`))
	require.ErrorIs(t, err, apierrors.ErrUnknownEvent)
}
