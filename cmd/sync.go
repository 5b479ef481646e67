package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/artx/internal/repositories"
	"github.com/desertthunder/artx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncOnce runs a single fetch + reconcile cycle and prints the merged records.
func (r *Runner) SyncOnce(ctx context.Context, cmd *cli.Command) error {
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

	ctx, cancel := context.WithTimeout(ctx, r.config.Sync.RequestTimeout())
	defer cancel()

	merged, err := engine.SyncArtists(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	r.logger.Info("sync complete", "artists", len(merged))
	return r.writeJSON(merged, cmd.Bool("pretty"))
}
