package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/artx/internal/repositories"
	"github.com/desertthunder/artx/internal/shared"
	"github.com/desertthunder/artx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TokenShow prints the stored credential.
func (r *Runner) TokenShow(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cred, err := repositories.NewTokenRepository(db).Get()
	if err != nil {
		if errors.Is(err, shared.ErrNoCredential) {
			return r.writePlain("no credential stored, visit /login to authorize\n")
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}

	return r.writeJSON(cred, cmd.Bool("pretty"))
}

// TokenRefresh refreshes the stored credential and prints the replacement.
func (r *Runner) TokenRefresh(ctx context.Context, cmd *cli.Command) error {
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

	cred, err := engine.RefreshCredential(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNoCredential) {
			return r.writePlain("no credential stored, visit /login to authorize\n")
		}
		return fmt.Errorf("failed to refresh credential: %w", err)
	}

	return r.writeJSON(cred, cmd.Bool("pretty"))
}
