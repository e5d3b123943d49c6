package server

import (
	"io"
	"net/http"
	"time"

	"github.com/iteebz/spacebrr-api/billing"
	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// CheckoutHandler opens a Stripe checkout for the session's user and
// returns the hosted URL.
func (s *Server) CheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		successURL := s.config.FrontendURL + "/billing?checkout=success"
		cancelURL := s.config.FrontendURL + "/billing?checkout=canceled"

		checkoutURL, err := s.stripe.CreateCheckoutSession(r.Context(),
			session.ID, s.config.StripePriceID, successURL, cancelURL)
		if err != nil {
			s.logger.Error().Err(err).Str("github_user", session.GitHubUser).
				Msg("checkout session create failed")
			writeError(w, http.StatusBadGateway, "checkout unavailable")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"url": checkoutURL})
	}
}

// StripeWebhookHandler verifies the delivery signature and hands the event
// to the reconciler. Unknown event kinds and events referencing nothing we
// issued are acknowledged with 200: the provider has nothing to retry.
func (s *Server) StripeWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable payload")
			return
		}

		sig := r.Header.Get("Stripe-Signature")
		if err := billing.VerifySignature(payload, sig, s.config.StripeWebhookSecret, time.Now()); err != nil {
			s.logger.Warn().Msg("stripe webhook signature rejected")
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}

		ev, err := billing.ParseEvent(payload)
		if apierrors.Is(err, apierrors.ErrUnknownEvent) {
			writeJSON(w, http.StatusOK, map[string]string{"received": "ignored"})
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "unparseable event")
			return
		}

		if err := s.reconciler.Apply(ev); err != nil {
			s.logger.Error().Err(err).Str("type", ev.Type).Msg("event apply failed")
			writeError(w, http.StatusInternalServerError, "event apply failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"received": "ok"})
	}
}
