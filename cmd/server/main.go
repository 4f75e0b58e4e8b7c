package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/friendgate/friendgate/internal/config"
	"github.com/friendgate/friendgate/registry"
	"github.com/friendgate/friendgate/server"
	"github.com/friendgate/friendgate/sessions"
	"github.com/friendgate/friendgate/store"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if c.GetEnv() == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	db, err := store.New(c.GetDatabase(), store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("store.New: %w", err)
	}

	sessionStore, err := sessions.NewStore(db.Sessions())
	if err != nil {
		return fmt.Errorf("sessions.NewStore: %w", err)
	}

	// Per-service integration clients are deployment-specific; register
	// them here as they are built.
	integrations := registry.StaticIntegrations{}

	srv, err := server.New(c, server.Repos{
		Friends:     db.Friends(),
		Services:    db.Services(),
		Grants:      db.Grants(),
		Credentials: db.Credentials(),
	}, sessionStore, integrations,
		server.WithRecorder(db.Activity()),
		server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepExpiredSessions(sweepCtx, sessionStore, c.GetSweepInterval(), logger)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// sweepExpiredSessions periodically reclaims storage held by expired
// sessions. Validation already treats expired rows as absent, so a missed
// or failed sweep never affects correctness.
func sweepExpiredSessions(ctx context.Context, sessionStore *sessions.Store, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessionStore.DeleteExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if removed > 0 {
				logger.Info().Int64("removed", removed).Msg("expired sessions reclaimed")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
