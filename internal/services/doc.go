// Package services contains the network clients of the artist tracker.
//
// # Catalog Service
//
// The [CatalogService] interface covers the two remote concerns: the OAuth2
// authorization-code flow (authorize URL, code exchange, token refresh) and the
// batched artist snapshot fetch. [SpotifyService] is the production
// implementation; tests substitute structural doubles.
//
// # Credential state machine
//
// NoCredential -> (login + exchange success) -> Valid -> (expiry) -> Expired
// -> (refresh success) -> Valid. A failed refresh leaves the credential
// Expired; the next cycle retries. Refresh is never attempted without a prior
// credential.
//
// # Failure handling
//
// Every remote failure maps to a sentinel ([shared.ErrExchangeFailed],
// [shared.ErrRefreshFailed], [shared.ErrFetchFailed]) so callers can recover
// locally to an absent/empty result. Requests carry a bounded timeout and the
// catalog fetch path is rate limited.
package services
