// Package githubapi wraps the two GitHub surfaces the gateway touches: the
// OAuth code exchange and a thin slice of the REST API.
package githubapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const defaultAPIBaseURL = "https://api.github.com"

// Client talks to GitHub on behalf of the gateway.
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithAPIBaseURL points REST calls at a different host (for tests).
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithEndpoint overrides the OAuth endpoint (for tests).
func WithEndpoint(endpoint oauth2.Endpoint) ClientOption {
	return func(c *Client) {
		c.oauth.Endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client for REST calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a GitHub client for the given OAuth application.
func NewClient(clientID, clientSecret, redirectURL string, options ...ClientOption) *Client {
	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       []string{"repo", "read:user"},
		},
		apiBaseURL: defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// AuthCodeURL builds the authorization URL carrying the anti-CSRF state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "[Exchange] token exchange failed")
	}
	return token.AccessToken, nil
}

// User returns the login of the token's owner.
func (c *Client) User(ctx context.Context, token string) (string, error) {
	body, err := c.get(ctx, token, "/user")
	if err != nil {
		return "", err
	}
	login := gjson.GetBytes(body, "login").String()
	if login == "" {
		return "", errors.New("[User] response missing login")
	}
	return login, nil
}

// Repo is the subset of repository fields the frontend lists.
type Repo struct {
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
}

// Repos lists repositories the token's owner can push to.
func (c *Client) Repos(ctx context.Context, token string) ([]Repo, error) {
	body, err := c.get(ctx, token, "/user/repos?sort=updated&per_page=100")
	if err != nil {
		return nil, err
	}

	var repos []Repo
	gjson.ParseBytes(body).ForEach(func(_, item gjson.Result) bool {
		if !item.Get("permissions.push").Bool() {
			return true
		}
		repos = append(repos, Repo{
			FullName: item.Get("full_name").String(),
			Private:  item.Get("private").Bool(),
			HTMLURL:  item.Get("html_url").String(),
			CloneURL: item.Get("clone_url").String(),
		})
		return true
	})
	return repos, nil
}

func (c *Client) get(ctx context.Context, token, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[githubapi] building request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[githubapi] request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[githubapi] reading response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("[githubapi] %s returned %s", path, resp.Status)
	}
	return body, nil
}
