package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler terminates OPTIONS requests that carried no Origin
// header. Cross-origin preflights are answered by CorsMiddleware before
// they reach here.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionHandler returns the session snapshot the frontend polls for
// billing state.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		writeJSON(w, http.StatusOK, map[string]any{
			"github_user":         session.GitHubUser,
			"customer_id":         session.CustomerID,
			"subscription_status": session.SubscriptionStatus,
		})
	}
}

// ReposHandler lists the GitHub repositories the session's user can push
// to.
func (s *Server) ReposHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		repos, err := s.github.Repos(r.Context(), session.Token)
		if err != nil {
			s.logger.Error().Err(err).Str("github_user", session.GitHubUser).
				Msg("repo listing failed")
			writeError(w, http.StatusBadGateway, "repo listing failed")
			return
		}
		writeJSON(w, http.StatusOK, repos)
	}
}

type provisionRequest struct {
	Name     string `json:"name"`
	RepoURL  string `json:"repo_url"`
	Template string `json:"template"`
}

// ProvisionHandler creates a customer project in the external system.
// Gated on an active subscription.
func (s *Server) ProvisionHandler() http.HandlerFunc {
	nameRe := regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if !session.HasActiveSubscription() {
			writeError(w, http.StatusPaymentRequired, "active subscription required")
			return
		}

		var req provisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !nameRe.MatchString(req.Name) || req.RepoURL == "" {
			writeError(w, http.StatusBadRequest, "name and repo_url are required")
			return
		}
		if req.Template == "" {
			req.Template = "testing"
		}

		repoPath := filepath.Join(s.config.WorkspaceDir, req.Name)
		projectID, err := s.space.Provision(r.Context(), req.Name, repoPath,
			session.GitHubUser, req.RepoURL, req.Template)
		if err != nil {
			s.logger.Error().Err(err).Str("name", req.Name).Msg("provision failed")
			writeError(w, http.StatusBadGateway, "provision failed")
			return
		}

		s.logger.Info().Str("project_id", projectID).
			Str("github_user", session.GitHubUser).Msg("project provisioned")
		writeJSON(w, http.StatusCreated, map[string]string{"project_id": projectID})
	}
}

// LedgerHandler passes the external system's ledger JSON through untouched.
func (s *Server) LedgerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := r.PathValue("project")
		if projectID == "" {
			writeError(w, http.StatusBadRequest, "project id required")
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 500 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		items, err := s.space.Ledger(r.Context(), projectID, limit)
		if err != nil {
			s.logger.Error().Err(err).Str("project_id", projectID).Msg("ledger query failed")
			writeError(w, http.StatusBadGateway, "ledger query failed")
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(items)
	}
}

// TaskCloseHandler marks a ledger task done.
func (s *Server) TaskCloseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := r.PathValue("id")
		if taskID == "" {
			writeError(w, http.StatusBadRequest, "task id required")
			return
		}

		if err := s.space.CloseTask(r.Context(), taskID); err != nil {
			s.logger.Error().Err(err).Str("task_id", taskID).Msg("task close failed")
			writeError(w, http.StatusBadGateway, "task close failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"closed": taskID})
	}
}

type waitlistRequest struct {
	Email string `json:"email"`
}

// WaitlistHandler captures a signup email. Duplicates succeed silently.
func (s *Server) WaitlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req waitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.waitlist.Add(req.Email); err != nil {
			writeError(w, http.StatusBadRequest, "invalid email")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "captured"})
	}
}
