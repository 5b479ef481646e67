// package server contains middleware & handlers for the artist tracking web service
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/desertthunder/artx/internal/models"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the artist tracking service.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Authorizer is the slice of the catalog service the auth handler depends on.
type Authorizer interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*models.Credential, error)
}

// TokenStore is the credential persistence surface the handlers depend on.
type TokenStore interface {
	Replace(cred *models.Credential) error
	Get() (*models.Credential, error)
}

// CredentialRefresher refreshes and persists the stored credential.
type CredentialRefresher interface {
	RefreshCredential(ctx context.Context) (*models.Credential, error)
}

// ArtistSyncer triggers a fetch + reconcile cycle with manual-edit protection.
type ArtistSyncer interface {
	SyncArtists(ctx context.Context) ([]models.Artist, error)
}

// ArtistStore is the artist persistence surface the handlers depend on.
type ArtistStore interface {
	Get(id string) (*models.Artist, error)
	List() ([]models.Artist, error)
	Delete(id string) error
	Reconcile(snapshots []models.Artist, skipManual, forceManual bool) ([]models.Artist, error)
}

// writeJSON encodes data as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
