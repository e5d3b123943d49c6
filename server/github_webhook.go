package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// taskRefPattern matches ledger task references ("t/<id>") in PR titles and
// bodies, using the external system's id shape.
var taskRefPattern = regexp.MustCompile(`\bt/([0-9a-f]{6,40})\b`)

// GitHubWebhookHandler closes ledger tasks referenced by merged pull
// requests. Deliveries are authenticated with the shared webhook secret.
func (s *Server) GitHubWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable payload")
			return
		}

		if !verifyGitHubSignature(payload, r.Header.Get("X-Hub-Signature-256"), s.config.GitHubWebhookSecret) {
			s.logger.Warn().Msg("github webhook signature rejected")
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}

		if r.Header.Get("X-GitHub-Event") != "pull_request" {
			writeJSON(w, http.StatusOK, map[string]string{"received": "ignored"})
			return
		}

		action := gjson.GetBytes(payload, "action").String()
		merged := gjson.GetBytes(payload, "pull_request.merged").Bool()
		if action != "closed" || !merged {
			writeJSON(w, http.StatusOK, map[string]string{"received": "ignored"})
			return
		}

		text := gjson.GetBytes(payload, "pull_request.title").String() + "\n" +
			gjson.GetBytes(payload, "pull_request.body").String()

		closed := 0
		for _, match := range taskRefPattern.FindAllStringSubmatch(text, -1) {
			taskID := match[1]
			if err := s.space.CloseTask(r.Context(), taskID); err != nil {
				s.logger.Error().Err(err).Str("task_id", taskID).
					Msg("task close from merged PR failed")
				continue
			}
			closed++
		}

		if closed > 0 {
			s.logger.Info().Int("tasks", closed).
				Str("pr", gjson.GetBytes(payload, "pull_request.html_url").String()).
				Msg("closed tasks from merged PR")
		}
		writeJSON(w, http.StatusOK, map[string]any{"received": "ok", "closed": closed})
	}
}

// verifyGitHubSignature checks an X-Hub-Signature-256 header
// ("sha256=<hex>") against the payload.
func verifyGitHubSignature(payload []byte, header, secret string) bool {
	sigHex, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(sig, mac.Sum(nil))
}
