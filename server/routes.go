package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteAuthGitHub, ChainMiddleware(s.LoginHandler(), s.baseMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthGitHubCallback, ChainMiddleware(s.CallbackHandler(), s.baseMiddleware()...))

	// API routes (bearer session auth)
	s.RegisterRouteFunc("GET "+RouteAPISession, s.apiRoute(s.SessionHandler()))
	s.RegisterRouteFunc("GET "+RouteAPIRepos, s.apiRoute(s.ReposHandler()))
	s.RegisterRouteFunc("POST "+RouteAPIProvision, s.apiRoute(s.ProvisionHandler()))
	s.RegisterRouteFunc("GET "+RouteAPILedger, s.apiRoute(s.LedgerHandler()))
	s.RegisterRouteFunc("POST "+RouteAPITaskClose, s.apiRoute(s.TaskCloseHandler()))
	s.RegisterRouteFunc("POST "+RouteAPICheckout, s.apiRoute(s.CheckoutHandler()))

	// Webhook receivers verify their own signatures; no session auth
	s.RegisterRouteFunc("POST "+RouteWebhookStripe, ChainMiddleware(s.StripeWebhookHandler(), s.baseMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteWebhookGitHub, ChainMiddleware(s.GitHubWebhookHandler(), s.baseMiddleware()...))

	s.RegisterRouteFunc("POST "+RouteWaitlist, ChainMiddleware(s.WaitlistHandler(), s.baseMiddleware()...))

	// Browser-facing routes use method-restricted patterns, so preflight
	// OPTIONS requests need their own registration to reach CorsMiddleware.
	preflight := ChainMiddleware(s.PreflightHandler(),
		append(s.baseMiddleware(), s.CorsMiddleware)...)
	s.RegisterRouteFunc("OPTIONS /api/", preflight)
	s.RegisterRouteFunc("OPTIONS "+RouteWaitlist, preflight)
}

// apiRoute wraps an authenticated API handler with the standard chain.
func (s *Server) apiRoute(h http.HandlerFunc) http.HandlerFunc {
	mw := s.baseMiddleware()
	mw = append(mw, s.CorsMiddleware, s.RequireSession())
	return ChainMiddleware(h, mw...)
}

func (s *Server) baseMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.RequestLogMiddleware,
	}
}
