package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/artx/internal/repositories"
	"github.com/desertthunder/artx/internal/shared"
	"github.com/urfave/cli/v3"
)

// ArtistsList prints every stored artist ordered by id.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewArtistRepository(db).List()
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	return r.writeJSON(records, cmd.Bool("pretty"))
}

// ArtistsGet prints a single stored artist.
func (r *Runner) ArtistsGet(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := repositories.NewArtistRepository(db).Get(cmd.String("id"))
	if err != nil {
		if errors.Is(err, shared.ErrArtistNotFound) {
			return r.writePlain("artist %q not found\n", cmd.String("id"))
		}
		return fmt.Errorf("failed to load artist: %w", err)
	}

	return r.writeJSON(record, cmd.Bool("pretty"))
}
