// Package server is the HTTP layer of the gateway. It translates between
// HTTP and the core components (state tracker, session store, reconciler)
// and invokes the external collaborators.
package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/iteebz/spacebrr-api/authstate"
	"github.com/iteebz/spacebrr-api/billing"
	"github.com/iteebz/spacebrr-api/githubapi"
	"github.com/iteebz/spacebrr-api/internal/config"
	"github.com/iteebz/spacebrr-api/internal/space"
	"github.com/iteebz/spacebrr-api/sessions"
	"github.com/iteebz/spacebrr-api/waitlist"
)

// Deps holds all collaborator dependencies for the Server.
type Deps struct {
	Sessions   sessions.Repo
	Tracker    *authstate.Tracker
	Reconciler *billing.Reconciler
	Stripe     *billing.Client
	GitHub     *githubapi.Client
	Space      *space.Runner
	Waitlist   *waitlist.Repo
}

type Server struct {
	mux    *http.ServeMux
	routes []string
	config *config.Config
	logger zerolog.Logger

	sessions   sessions.Repo
	tracker    *authstate.Tracker
	reconciler *billing.Reconciler
	stripe     *billing.Client
	github     *githubapi.Client
	space      *space.Runner
	waitlist   *waitlist.Repo
}

func New(cfg *config.Config, logger zerolog.Logger, deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, errors.New("[Server New] Sessions repo is required")
	}
	if deps.Tracker == nil {
		return nil, errors.New("[Server New] Tracker is required")
	}
	if deps.Reconciler == nil {
		return nil, errors.New("[Server New] Reconciler is required")
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     cfg,
		logger:     logger.With().Str("component", "server").Logger(),
		sessions:   deps.Sessions,
		tracker:    deps.Tracker,
		reconciler: deps.Reconciler,
		stripe:     deps.Stripe,
		github:     deps.GitHub,
		space:      deps.Space,
		waitlist:   deps.Waitlist,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if !s.config.IsDev() {
		return
	}
	for _, route := range s.routes {
		s.logger.Debug().Str("route", route).Msg("registered")
	}
}
