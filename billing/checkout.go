package billing

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// Client is a minimal Stripe API client covering checkout session creation.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API host (for tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Stripe client authenticated with the given secret key.
func NewClient(secretKey string, options ...ClientOption) *Client {
	c := &Client{
		secretKey:  secretKey,
		baseURL:    defaultStripeBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// CreateCheckoutSession opens a subscription checkout for the given price.
// The gateway session id rides along in metadata so the completion webhook
// can find its way back to the session that started the flow. Returns the
// hosted checkout URL to redirect the browser to.
func (c *Client) CreateCheckoutSession(ctx context.Context, sessionID, priceID, successURL, cancelURL string) (string, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[session_id]", sessionID)
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "[CreateCheckoutSession] building request")
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[CreateCheckoutSession] request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "[CreateCheckoutSession] reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = resp.Status
		}
		return "", errors.Errorf("[CreateCheckoutSession] stripe error: %s", msg)
	}

	checkoutURL := gjson.GetBytes(body, "url").String()
	if checkoutURL == "" {
		return "", errors.New("[CreateCheckoutSession] response missing checkout url")
	}
	return checkoutURL, nil
}
