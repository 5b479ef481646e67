package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/repositories"
	"github.com/desertthunder/artx/internal/shared"
	"github.com/desertthunder/artx/internal/tasks"
	mock "github.com/desertthunder/artx/internal/testing"
)

func setupRouter(t *testing.T, catalog *mock.MockCatalog, ids []string) (http.Handler, *repositories.TokenRepository, *repositories.ArtistRepository) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tokens := repositories.NewTokenRepository(db)
	artists := repositories.NewArtistRepository(db)
	engine := tasks.NewSyncEngine(catalog, tokens, artists, ids, nil)

	router := NewBasicRouter()
	router.Handler(NewAuthHandler(catalog, tokens, engine, nil))
	router.Handler(NewArtistHandler(artists, engine, nil))

	return router, tokens, artists
}

func testCredential(access string) *models.Credential {
	return &models.Credential{
		AccessToken:  access,
		RefreshToken: "refresh_" + access,
		ExpiresIn:    3600,
		Scope:        "user-read-private",
		TokenType:    "Bearer",
		IssuedAt:     time.Now().UTC(),
	}
}

func testArtist(id string, popularity int) models.Artist {
	return models.Artist{
		ID:           id,
		Kind:         "artist",
		Href:         "http://example.com/" + id,
		Name:         "test artist " + id,
		Popularity:   popularity,
		URI:          "spotify:artist:" + id,
		Genres:       []string{"rock"},
		ExternalURLs: models.ExternalURLs{Spotify: "http://example.com/" + id},
		Followers:    models.Followers{Total: 1},
	}
}

func TestAuthHandler(t *testing.T) {
	t.Run("Login Redirects With State Cookie", func(t *testing.T) {
		catalog := &mock.MockCatalog{}
		router, _, _ := setupRouter(t, catalog, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		if rec.Code != http.StatusTemporaryRedirect {
			t.Fatalf("expected 307, got %d", rec.Code)
		}

		var state string
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == stateCookie {
				state = cookie.Value
				if !cookie.HttpOnly {
					t.Error("expected state cookie to be http-only")
				}
			}
		}
		if len(state) != stateLength {
			t.Fatalf("expected %d character state, got %q", stateLength, state)
		}

		location := rec.Header().Get("Location")
		if !strings.Contains(location, state) {
			t.Errorf("expected redirect %q to carry state %q", location, state)
		}
		if catalog.LastState != state {
			t.Errorf("expected catalog to receive state %q, got %q", state, catalog.LastState)
		}
	})

	t.Run("Login Response Rejects Mismatched State", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/login_response?state=other&code=abc", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if body := rec.Body.String(); body != "state_mismatch" {
			t.Errorf("expected state_mismatch, got %q", body)
		}
	})

	t.Run("Login Response Rejects Missing Cookie", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login_response?state=expected&code=abc", nil))

		if body := rec.Body.String(); body != "state_mismatch" {
			t.Errorf("expected state_mismatch, got %q", body)
		}
	})

	t.Run("Login Response Surfaces Provider Error", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/login_response?state=expected&error=access_denied", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if body := rec.Body.String(); body != "access_denied" {
			t.Errorf("expected provider error verbatim, got %q", body)
		}
	})

	t.Run("Login Response Requires Code", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/login_response?state=expected", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if body := rec.Body.String(); body != "no_code" {
			t.Errorf("expected no_code, got %q", body)
		}
	})

	t.Run("Login Response Stores Credential", func(t *testing.T) {
		catalog := &mock.MockCatalog{Cred: testCredential("fresh")}
		router, tokens, _ := setupRouter(t, catalog, nil)

		req := httptest.NewRequest(http.MethodGet, "/login_response?state=expected&code=abc", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if body := rec.Body.String(); body != "login_successful" {
			t.Fatalf("expected login_successful, got %q", body)
		}
		if catalog.LastCode != "abc" {
			t.Errorf("expected exchange with code abc, got %q", catalog.LastCode)
		}

		cred, err := tokens.Get()
		if err != nil {
			t.Fatalf("expected stored credential: %v", err)
		}
		if cred.AccessToken != "fresh" {
			t.Errorf("expected stored access token fresh, got %q", cred.AccessToken)
		}
	})

	t.Run("Login Response Reports Failed Exchange", func(t *testing.T) {
		catalog := &mock.MockCatalog{ExchangeErr: shared.ErrExchangeFailed}
		router, _, _ := setupRouter(t, catalog, nil)

		req := httptest.NewRequest(http.MethodGet, "/login_response?state=expected&code=abc", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if body := rec.Body.String(); body != "get_token_failed" {
			t.Errorf("expected get_token_failed, got %q", body)
		}
	})

	t.Run("Auth Token Returns Null When Empty", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth_token", nil))

		if body := strings.TrimSpace(rec.Body.String()); body != "null" {
			t.Errorf("expected null body, got %q", body)
		}
	})

	t.Run("Auth Token Returns Stored Credential", func(t *testing.T) {
		router, tokens, _ := setupRouter(t, &mock.MockCatalog{}, nil)
		if err := tokens.Replace(testCredential("stored")); err != nil {
			t.Fatalf("failed to store credential: %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth_token", nil))

		var cred models.Credential
		if err := json.Unmarshal(rec.Body.Bytes(), &cred); err != nil {
			t.Fatalf("failed to decode credential: %v", err)
		}
		if cred.AccessToken != "stored" {
			t.Errorf("expected access token stored, got %q", cred.AccessToken)
		}
	})

	t.Run("Refresh Returns Null When Empty", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh_auth_token", nil))

		if body := strings.TrimSpace(rec.Body.String()); body != "null" {
			t.Errorf("expected null body, got %q", body)
		}
	})

	t.Run("Refresh Replaces Stored Credential", func(t *testing.T) {
		catalog := &mock.MockCatalog{Cred: testCredential("rotated")}
		router, tokens, _ := setupRouter(t, catalog, nil)
		if err := tokens.Replace(testCredential("stale")); err != nil {
			t.Fatalf("failed to store credential: %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh_auth_token", nil))

		var cred models.Credential
		if err := json.Unmarshal(rec.Body.Bytes(), &cred); err != nil {
			t.Fatalf("failed to decode credential: %v", err)
		}
		if cred.AccessToken != "rotated" {
			t.Errorf("expected rotated access token, got %q", cred.AccessToken)
		}

		stored, err := tokens.Get()
		if err != nil {
			t.Fatalf("expected stored credential: %v", err)
		}
		if stored.AccessToken != "rotated" {
			t.Errorf("expected persisted access token rotated, got %q", stored.AccessToken)
		}
	})

	t.Run("Root Reports Health", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestArtistHandler(t *testing.T) {
	t.Run("Update Stores Fetched Artists", func(t *testing.T) {
		catalog := &mock.MockCatalog{Artists: []models.Artist{testArtist("a", 10)}}
		router, tokens, artists := setupRouter(t, catalog, []string{"a"})
		if err := tokens.Replace(testCredential("valid")); err != nil {
			t.Fatalf("failed to store credential: %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/update_artists_from_spotify", nil))

		var merged []models.Artist
		if err := json.Unmarshal(rec.Body.Bytes(), &merged); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(merged) != 1 || merged[0].ID != "a" {
			t.Fatalf("expected one merged artist, got %+v", merged)
		}

		if _, err := artists.Get("a"); err != nil {
			t.Errorf("expected artist to be persisted: %v", err)
		}
	})

	t.Run("Update Degrades To Empty List Without Credential", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, []string{"a"})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/update_artists_from_spotify", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("expected empty list, got %q", body)
		}
	})

	t.Run("Update Degrades To Empty List On Fetch Failure", func(t *testing.T) {
		catalog := &mock.MockCatalog{FetchErr: shared.ErrFetchFailed}
		router, tokens, _ := setupRouter(t, catalog, []string{"a"})
		if err := tokens.Replace(testCredential("valid")); err != nil {
			t.Fatalf("failed to store credential: %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/update_artists_from_spotify", nil))

		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("expected empty list, got %q", body)
		}
	})

	t.Run("Get Missing Artist Returns 404", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artist/nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Put Creates Then Get Returns Artist", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		payload, _ := json.Marshal(testArtist("a", 42))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/artist/a", strings.NewReader(string(payload))))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var stored models.Artist
		if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !stored.ManuallyModified {
			t.Error("expected stored artist to be flagged as manually modified")
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artist/a", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Put Overwrites Manual Record", func(t *testing.T) {
		catalog := &mock.MockCatalog{Artists: []models.Artist{testArtist("a", 10)}}
		router, tokens, artists := setupRouter(t, catalog, []string{"a"})
		if err := tokens.Replace(testCredential("valid")); err != nil {
			t.Fatalf("failed to store credential: %v", err)
		}

		first := testArtist("a", 1)
		if _, err := artists.Reconcile([]models.Artist{first}, false, true); err != nil {
			t.Fatalf("failed to seed manual record: %v", err)
		}

		edited := testArtist("a", 1000000)
		payload, _ := json.Marshal(edited)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/artist/a", strings.NewReader(string(payload))))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		// A background sync afterwards must not disturb the manual edit.
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/update_artists_from_spotify", nil))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artist/a", nil))

		var stored models.Artist
		if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
			t.Fatalf("failed to decode artist: %v", err)
		}
		if stored.Popularity != 1000000 {
			t.Errorf("expected manual popularity to survive sync, got %d", stored.Popularity)
		}
	})

	t.Run("Put Without ID Is Rejected", func(t *testing.T) {
		router, _, _ := setupRouter(t, &mock.MockCatalog{}, nil)

		artist := testArtist("ignored", 1)
		artist.ID = ""
		payload, _ := json.Marshal(artist)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/artist/", strings.NewReader(string(payload))))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Delete Removes Record", func(t *testing.T) {
		router, _, artists := setupRouter(t, &mock.MockCatalog{}, nil)
		if _, err := artists.Reconcile([]models.Artist{testArtist("a", 1)}, false, false); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/artist/a", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}

		if _, err := artists.Get("a"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected artist to be gone, got %v", err)
		}
	})

	t.Run("List Returns Stored Artists", func(t *testing.T) {
		router, _, artists := setupRouter(t, &mock.MockCatalog{}, nil)
		batch := []models.Artist{testArtist("b", 2), testArtist("a", 1)}
		if _, err := artists.Reconcile(batch, false, false); err != nil {
			t.Fatalf("failed to seed artists: %v", err)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artists", nil))

		var records []models.Artist
		if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(records) != 2 || records[0].ID != "a" || records[1].ID != "b" {
			t.Errorf("expected [a b] ordered by id, got %+v", records)
		}
	})
}
