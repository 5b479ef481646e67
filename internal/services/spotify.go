// Spotify API implementation of [CatalogService]
//
// Wire shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// tokenResponse is the provider token endpoint reply. refresh_token is optional
// on refresh grants; the provider does not always rotate it.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// SpotifyService implements [CatalogService] for the Spotify Web API.
//
// Token grants are POSTed directly with the Basic auth header required by the
// provider; [oauth2.Config] is kept for authorize URL construction.
type SpotifyService struct {
	config     *oauth2.Config
	authHeader string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     *log.Logger
}

// NewSpotifyService creates a new Spotify service from the given credentials.
func NewSpotifyService(creds shared.SpotifyConfig, timeout time.Duration, logger *log.Logger) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret is required", shared.ErrMissingCredentials)
	}

	redirectBase := creds.RedirectBase
	if redirectBase == "" {
		redirectBase = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  strings.TrimRight(redirectBase, "/") + "/login_response",
		Scopes: []string{
			"user-read-private",
			"user-read-email",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		authHeader: creds.AuthHeader(),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		timeout:    timeout,
		logger:     logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthorizeURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthorizeURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// postToken performs a token endpoint request with the Basic auth header.
func (s *SpotifyService) postToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+s.authHeader)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var reply tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if reply.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint reply missing access_token")
	}

	return &reply, nil
}

// ExchangeCode exchanges an authorization code for a fresh credential.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) (*models.Credential, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {s.config.RedirectURL},
	}

	reply, err := s.postToken(ctx, form)
	if err != nil {
		s.logger.Error("code exchange failed", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}

	return &models.Credential{
		AccessToken:  reply.AccessToken,
		RefreshToken: reply.RefreshToken,
		ExpiresIn:    reply.ExpiresIn,
		Scope:        reply.Scope,
		TokenType:    reply.TokenType,
		IssuedAt:     time.Now().UTC(),
	}, nil
}

// Refresh obtains a new credential using the old credential's refresh token.
func (s *SpotifyService) Refresh(ctx context.Context, old *models.Credential) (*models.Credential, error) {
	if old == nil {
		return nil, shared.ErrNoCredential
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {old.RefreshToken},
	}

	reply, err := s.postToken(ctx, form)
	if err != nil {
		s.logger.Error("token refresh failed", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	refreshToken := reply.RefreshToken
	if refreshToken == "" {
		// the provider does not always rotate the refresh token
		refreshToken = old.RefreshToken
	}

	return &models.Credential{
		AccessToken:  reply.AccessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    reply.ExpiresIn,
		Scope:        reply.Scope,
		TokenType:    reply.TokenType,
		IssuedAt:     time.Now().UTC(),
	}, nil
}

// FetchArtists retrieves a batch of artist snapshots in a single request.
func (s *SpotifyService) FetchArtists(ctx context.Context, ids []string, bearer string) ([]models.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := spotifyBaseURL + "/artists?ids=" + url.QueryEscape(strings.Join(ids, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("artist fetch failed", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("artist fetch failed", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", shared.ErrFetchFailed, resp.StatusCode)
	}

	var reply struct {
		Artists []models.Artist `json:"artists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		s.logger.Error("artist fetch returned malformed body", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	s.logger.Debug("fetched artists", "count", len(reply.Artists))
	return reply.Artists, nil
}
