package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHealth = "/health"

	// Auth Routes
	RouteAuthGitHub         = "/auth/github"
	RouteAuthGitHubCallback = "/auth/github/callback"

	// API Routes (bearer-authenticated)
	RouteAPISession   = "/api/session"
	RouteAPIRepos     = "/api/repos"
	RouteAPIProvision = "/api/provision"
	RouteAPILedger    = "/api/ledger/{project}"
	RouteAPITaskClose = "/api/tasks/{id}/close"
	RouteAPICheckout  = "/api/checkout"

	// Webhook receivers
	RouteWebhookStripe = "/webhooks/stripe"
	RouteWebhookGitHub = "/webhooks/github"

	// Public capture
	RouteWaitlist = "/waitlist"
)
