package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iteebz/spacebrr-api/authstate"
	"github.com/iteebz/spacebrr-api/billing"
	"github.com/iteebz/spacebrr-api/githubapi"
	"github.com/iteebz/spacebrr-api/internal/config"
	"github.com/iteebz/spacebrr-api/internal/space"
	"github.com/iteebz/spacebrr-api/server"
	"github.com/iteebz/spacebrr-api/sessions"
	"github.com/iteebz/spacebrr-api/waitlist"
)

// retentionSweepInterval is how often idle sessions are purged.
const retentionSweepInterval = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	displayAppname(cfg.AppName)

	db, err := sessions.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	sessionRepo := sessions.NewGormRepo(db)

	waitlistRepo, err := waitlist.NewRepo(db)
	if err != nil {
		return err
	}

	stateRepo := authstate.NewInMemoryRepo(authstate.StateTTL)
	defer stateRepo.Stop()

	tracker, err := authstate.NewTracker(stateRepo)
	if err != nil {
		return err
	}

	reconciler, err := billing.NewReconciler(sessionRepo, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger, server.Deps{
		Sessions:   sessionRepo,
		Tracker:    tracker,
		Reconciler: reconciler,
		Stripe:     billing.NewClient(cfg.StripeSecretKey),
		GitHub: githubapi.NewClient(cfg.GitHubClientID, cfg.GitHubClientSecret,
			cfg.BaseURL+"/auth/github/callback"),
		Space:    space.NewRunner(cfg.SpaceBinDir),
		Waitlist: waitlistRepo,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "server.ListenAndServe")
		}
		return nil
	})

	g.Go(func() error {
		return retentionSweep(ctx, logger, sessionRepo, cfg.SessionRetentionDays)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// retentionSweep purges sessions idle past the retention window. This is
// garbage collection, not a business event.
func retentionSweep(ctx context.Context, logger zerolog.Logger, repo sessions.Repo, retentionDays int) error {
	age := time.Duration(retentionDays) * 24 * time.Hour
	ticker := time.NewTicker(retentionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := repo.PurgeOlderThan(age)
			if err != nil {
				logger.Error().Err(err).Msg("retention sweep failed")
				continue
			}
			if removed > 0 {
				logger.Info().Int64("removed", removed).Msg("purged idle sessions")
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
