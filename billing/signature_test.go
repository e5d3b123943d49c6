package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iteebz/spacebrr-api/billing"
	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

const testWebhookSecret = "whsec_test"

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"customer.subscription.updated"}`)
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		header := billing.SignPayload(payload, testWebhookSecret, now)
		err := billing.VerifySignature(payload, header, testWebhookSecret, now)
		require.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := billing.SignPayload(payload, "whsec_other", now)
		err := billing.VerifySignature(payload, header, testWebhookSecret, now)
		require.ErrorIs(t, err, apierrors.ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := billing.SignPayload(payload, testWebhookSecret, now)
		err := billing.VerifySignature([]byte(`{"type":"evil"}`), header, testWebhookSecret, now)
		require.ErrorIs(t, err, apierrors.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := billing.SignPayload(payload, testWebhookSecret, now.Add(-billing.SignatureTolerance-time.Minute))
		err := billing.VerifySignature(payload, header, testWebhookSecret, now)
		require.ErrorIs(t, err, apierrors.ErrInvalidSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"", "t=abc,v1=zz", "v1=deadbeef", "t=123"} {
			err := billing.VerifySignature(payload, header, testWebhookSecret, now)
			require.ErrorIs(t, err, apierrors.ErrInvalidSignature, "header %q", header)
		}
	})
}
