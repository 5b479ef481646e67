// package services defines interface CatalogService for talking to the remote music catalog
package services

import (
	"context"

	"github.com/desertthunder/artx/internal/models"
)

// CatalogService defines the network surface of the remote provider: the
// three-legged OAuth dance plus the batched artist fetch.
//
// Implementations must complete all network I/O before any caller-side
// persistence begins; no method holds store state.
type CatalogService interface {
	// AuthorizeURL constructs the provider authorize URL with the fixed scopes,
	// response_type=code and the caller-generated anti-CSRF state embedded.
	AuthorizeURL(state string) string

	// ExchangeCode POSTs an authorization_code grant and returns the resulting
	// credential with IssuedAt set to now.
	ExchangeCode(ctx context.Context, code string) (*models.Credential, error)

	// Refresh POSTs a refresh_token grant using the old credential. When the
	// provider omits refresh_token in the reply, the old value is carried
	// forward into the returned credential.
	Refresh(ctx context.Context, old *models.Credential) (*models.Credential, error)

	// FetchArtists performs a single batched request for all given ids using
	// the bearer token.
	FetchArtists(ctx context.Context, ids []string, bearer string) ([]models.Artist, error)

	// Name returns the name of the provider (e.g. "Spotify")
	Name() string
}
