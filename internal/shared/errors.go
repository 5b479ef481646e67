package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Credential lifecycle errors
	ErrNoCredential   = fmt.Errorf("no credential stored")
	ErrStateMismatch  = fmt.Errorf("state mismatch")
	ErrProvider       = fmt.Errorf("provider returned an error")
	ErrExchangeFailed = fmt.Errorf("authorization code exchange failed")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")

	// Catalog errors
	ErrFetchFailed    = fmt.Errorf("artist fetch failed")
	ErrArtistNotFound = fmt.Errorf("artist not found")
)
