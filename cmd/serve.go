package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/artx/internal/repositories"
	"github.com/desertthunder/artx/internal/server"
	"github.com/desertthunder/artx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP server and the background sync scheduler until
// interrupted, then shuts both down gracefully.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	catalog, err := r.resolveCatalog()
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	tokens := repositories.NewTokenRepository(db)
	artists := repositories.NewArtistRepository(db)
	engine := tasks.NewSyncEngine(catalog, tokens, artists, r.config.Sync.Artists, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(server.NewAuthHandler(catalog, tokens, engine, r.logger))
	router.Handler(server.NewArtistHandler(artists, engine, r.logger))

	port := r.config.Server.Port
	if flagPort := cmd.Int("port"); flagPort != 0 {
		port = flagPort
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", r.config.Server.Host, port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := tasks.NewScheduler(
		engine,
		r.config.Sync.ArtistInterval(),
		r.config.Sync.TokenInterval(),
		r.config.Sync.RequestTimeout(),
		r.logger,
	)
	go scheduler.Run(ctx)

	serveErr := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
