// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/desertthunder/artx/internal/models"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error

	// Requests records every request seen, newest last.
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.response, m.err
}

// JSONResponse builds an [http.Response] with the given status and body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// MockCatalog is a test double satisfying services.CatalogService.
//
// Each instance carries its own state; tests construct a fresh one rather than
// resetting shared fields.
type MockCatalog struct {
	Cred       *models.Credential
	Artists    []models.Artist
	ExchangeErr error
	RefreshErr  error
	FetchErr    error

	LastState   string
	LastCode    string
	FetchedIDs  []string
	LastBearer  string
}

func (m *MockCatalog) AuthorizeURL(state string) string {
	m.LastState = state
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockCatalog) ExchangeCode(ctx context.Context, code string) (*models.Credential, error) {
	m.LastCode = code
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	return m.Cred, nil
}

func (m *MockCatalog) Refresh(ctx context.Context, old *models.Credential) (*models.Credential, error) {
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	return m.Cred, nil
}

func (m *MockCatalog) FetchArtists(ctx context.Context, ids []string, bearer string) ([]models.Artist, error) {
	m.FetchedIDs = ids
	m.LastBearer = bearer
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Artists, nil
}

func (m *MockCatalog) Name() string { return "mock" }
