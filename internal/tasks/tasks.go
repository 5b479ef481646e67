package tasks

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/services"
	"github.com/desertthunder/artx/internal/shared"
)

// TokenStore describes the credential persistence the engine needs.
// repositories.TokenRepository is the production implementation.
type TokenStore interface {
	Replace(cred *models.Credential) error
	Get() (*models.Credential, error)
}

// ArtistStore describes the artist persistence the engine needs.
// repositories.ArtistRepository is the production implementation.
type ArtistStore interface {
	Reconcile(snapshots []models.Artist, skipManual, forceManual bool) ([]models.Artist, error)
}

// SyncEngine orchestrates credential upkeep and artist synchronization.
//
// All network I/O completes before any store transaction begins, so no
// transaction is ever held open across a remote call.
type SyncEngine struct {
	catalog services.CatalogService
	tokens  TokenStore
	artists ArtistStore
	ids     []string
	logger  *log.Logger
}

// NewSyncEngine creates a new SyncEngine for the given tracked artist ids.
func NewSyncEngine(catalog services.CatalogService, tokens TokenStore, artists ArtistStore, ids []string, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SyncEngine{
		catalog: catalog,
		tokens:  tokens,
		artists: artists,
		ids:     ids,
		logger:  logger,
	}
}

// SyncArtists fetches snapshots for every tracked id and reconciles them into
// storage with manual-edit protection (skip_manual=true, force_manual=false).
//
// Expired credentials are refreshed before the catalog call. A missing
// credential or a failed remote call skips the cycle; the error is returned so
// callers can report it, but the next cycle simply retries from scratch.
func (e *SyncEngine) SyncArtists(ctx context.Context) ([]models.Artist, error) {
	cred, err := e.tokens.Get()
	if errors.Is(err, shared.ErrNoCredential) {
		e.logger.Warn("sync skipped: not logged in")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if cred.Expired() {
		e.logger.Info("credential expired, refreshing before sync")
		cred, err = e.refresh(ctx, cred)
		if err != nil {
			return nil, err
		}
	}

	snapshots, err := e.catalog.FetchArtists(ctx, e.ids, cred.AccessToken)
	if err != nil {
		e.logger.Warn("artist fetch failed, skipping cycle", "err", err)
		return nil, err
	}

	e.logger.Debug("reconciling artists", "count", len(snapshots))
	return e.artists.Reconcile(snapshots, true, false)
}

// RefreshCredential refreshes the stored credential unconditionally and
// persists the replacement.
func (e *SyncEngine) RefreshCredential(ctx context.Context) (*models.Credential, error) {
	cred, err := e.tokens.Get()
	if errors.Is(err, shared.ErrNoCredential) {
		e.logger.Warn("refresh skipped: not logged in")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return e.refresh(ctx, cred)
}

// RefreshIfExpired refreshes the stored credential only once it has expired.
// A failed refresh leaves the old credential in place for the next cycle.
func (e *SyncEngine) RefreshIfExpired(ctx context.Context) error {
	cred, err := e.tokens.Get()
	if errors.Is(err, shared.ErrNoCredential) {
		e.logger.Warn("refresh skipped: not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	if !cred.Expired() {
		e.logger.Debug("credential still valid")
		return nil
	}

	_, err = e.refresh(ctx, cred)
	return err
}

func (e *SyncEngine) refresh(ctx context.Context, old *models.Credential) (*models.Credential, error) {
	fresh, err := e.catalog.Refresh(ctx, old)
	if err != nil {
		e.logger.Warn("credential refresh failed", "err", err)
		return nil, err
	}

	if err := e.tokens.Replace(fresh); err != nil {
		return nil, err
	}

	e.logger.Info("credential refreshed")
	return fresh, nil
}
