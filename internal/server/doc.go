// Package server provides HTTP routing, middleware, and the web surface of the artist tracker.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Auth Endpoints
//
// [AuthHandler] implements the OAuth2 authorization code flow against the catalog provider.
//
// GET /login stores a random state token in a short-lived cookie and redirects to the
// provider's consent page. GET /login_response validates the state (CSRF protection),
// exchanges the authorization code, and replaces the stored credential; its plain-text
// bodies ("login_successful", "state_mismatch", "no_code", "get_token_failed") are part
// of the endpoint contract. GET /auth_token and GET /refresh_auth_token expose the
// stored credential as JSON, returning null when none exists.
//
// # Artist Endpoints
//
// [ArtistHandler] serves stored artist records.
//
// GET /update_artists_from_spotify runs a fetch + reconcile cycle on demand. The
// /artist/{id} subtree supports GET, PUT, and DELETE; PUT overwrites even manually
// modified records and marks the result as manually modified, so background syncs
// leave it untouched afterwards.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
