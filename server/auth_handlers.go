package server

import (
	"fmt"
	"net/http"

	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

// LoginHandler issues a state token and sends the browser to GitHub. An
// optional ?redirect= query carries the frontend location to restore after
// the round trip.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.tracker.Issue(r.URL.Query().Get("redirect"))
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue oauth state")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.Redirect(w, r, s.github.AuthCodeURL(state), http.StatusFound)
	}
}

// CallbackHandler consumes the state token, exchanges the code, resolves
// the GitHub identity, and hands the browser its session id.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errParam := r.FormValue("error"); errParam != "" {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("authorization failed: %s", errParam))
			return
		}

		state := r.FormValue("state")
		code := r.FormValue("code")
		if state == "" || code == "" {
			writeError(w, http.StatusBadRequest, "missing code or state parameter")
			return
		}

		redirect, err := s.tracker.Consume(state)
		switch {
		case apierrors.Is(err, apierrors.ErrStateExpired):
			writeError(w, http.StatusBadRequest, "login took too long, please retry")
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, "invalid state parameter")
			return
		}

		token, err := s.github.Exchange(r.Context(), code)
		if err != nil {
			s.logger.Error().Err(err).Msg("github token exchange failed")
			writeError(w, http.StatusBadGateway, "token exchange failed")
			return
		}

		login, err := s.github.User(r.Context(), token)
		if err != nil {
			s.logger.Error().Err(err).Msg("github user lookup failed")
			writeError(w, http.StatusBadGateway, "user lookup failed")
			return
		}

		session, err := s.sessions.Create(token, login)
		if err != nil {
			s.logger.Error().Err(err).Msg("session create failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		s.logger.Info().Str("github_user", login).Msg("login completed")

		dest := redirect
		if dest == "" {
			dest = s.config.FrontendURL
		}
		// The id travels in the fragment so it never reaches server logs.
		http.Redirect(w, r, dest+"#session_id="+session.ID, http.StatusFound)
	}
}
