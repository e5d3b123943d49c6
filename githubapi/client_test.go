package githubapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/iteebz/spacebrr-api/githubapi"
)

func newTestClient(t *testing.T, handler http.Handler) *githubapi.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return githubapi.NewClient("cid", "csecret", "http://localhost/callback",
		githubapi.WithAPIBaseURL(srv.URL),
		githubapi.WithEndpoint(oauth2.Endpoint{
			AuthURL:  srv.URL + "/authorize",
			TokenURL: srv.URL + "/token",
		}),
	)
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	u, err := url.Parse(client.AuthCodeURL("state-token"))
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "state-token", q.Get("state"))
	require.Equal(t, "cid", q.Get("client_id"))
	require.Contains(t, q.Get("scope"), "repo")
}

func TestExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_abc",
			"token_type":   "bearer",
		})
	})
	client := newTestClient(t, mux)

	token, err := client.Exchange(context.Background(), "authcode")
	require.NoError(t, err)
	require.Equal(t, "gho_abc", token)
}

func TestExchangeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
	})
	client := newTestClient(t, mux)

	_, err := client.Exchange(context.Background(), "expired")
	require.Error(t, err)
}

func TestUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"login": "octo", "id": 42})
	})
	client := newTestClient(t, mux)

	login, err := client.User(context.Background(), "gho_abc")
	require.NoError(t, err)
	require.Equal(t, "octo", login)
}

func TestUserBadToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	})
	client := newTestClient(t, mux)

	_, err := client.User(context.Background(), "revoked")
	require.Error(t, err)
}

func TestReposFiltersPushAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"full_name":"octo/mine","private":true,"html_url":"https://github.com/octo/mine","clone_url":"https://github.com/octo/mine.git","permissions":{"push":true}},
			{"full_name":"other/starred","private":false,"html_url":"https://github.com/other/starred","clone_url":"https://github.com/other/starred.git","permissions":{"push":false}}
		]`))
	})
	client := newTestClient(t, mux)

	repos, err := client.Repos(context.Background(), "gho_abc")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	require.Equal(t, "octo/mine", repos[0].FullName)
	require.True(t, repos[0].Private)
	require.Equal(t, "https://github.com/octo/mine.git", repos[0].CloneURL)
}
