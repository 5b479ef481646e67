package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/artx/internal/shared"
)

// stateCookie carries the CSRF state across the authorization redirect.
const stateCookie = "auth_state"

const stateLength = 16

const stateLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// AuthHandler handles the OAuth2 authorization code flow and credential endpoints.
// Implements the Handler interface for registration with a Router.
type AuthHandler struct {
	catalog   Authorizer
	tokens    TokenStore
	refresher CredentialRefresher
	logger    *log.Logger
}

// NewAuthHandler creates a new auth handler backed by the given catalog and token store.
func NewAuthHandler(catalog Authorizer, tokens TokenStore, refresher CredentialRefresher, logger *log.Logger) *AuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &AuthHandler{
		catalog:   catalog,
		tokens:    tokens,
		refresher: refresher,
		logger:    logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/", "/login", "/login_response", "/auth_token", "/refresh_auth_token"}
}

// ServeHTTP dispatches to the endpoint matching the request path.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		writeJSON(w, http.StatusOK, map[string]string{"msg": "artist tracker is running"})
	case "/login":
		h.login(w, r)
	case "/login_response":
		h.loginResponse(w, r)
	case "/auth_token":
		h.authToken(w, r)
	case "/refresh_auth_token":
		h.refreshAuthToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login generates a random state token, stores it in a short-lived cookie,
// and redirects the client to the provider's authorization page.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState(stateLength)
	if err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
	})

	http.Redirect(w, r, h.catalog.AuthorizeURL(state), http.StatusTemporaryRedirect)
}

// loginResponse handles the authorization callback.
//
// Validates the state cookie against the callback query, surfaces provider errors
// verbatim, exchanges the authorization code, and persists the credential.
func (h *AuthHandler) loginResponse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value != query.Get("state") {
		h.logger.Warn("state mismatch on login callback")
		fmt.Fprint(w, "state_mismatch")
		return
	}

	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.Warn("provider rejected authorization", "error", providerErr)
		fmt.Fprint(w, providerErr)
		return
	}

	code := query.Get("code")
	if code == "" {
		fmt.Fprint(w, "no_code")
		return
	}

	cred, err := h.catalog.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", "error", err)
		fmt.Fprint(w, "get_token_failed")
		return
	}

	if err := h.tokens.Replace(cred); err != nil {
		h.logger.Error("failed to store credential", "error", err)
		http.Error(w, "failed to store credential", http.StatusInternalServerError)
		return
	}

	fmt.Fprint(w, "login_successful")
}

// authToken returns the stored credential, or JSON null when none exists.
func (h *AuthHandler) authToken(w http.ResponseWriter, r *http.Request) {
	cred, err := h.tokens.Get()
	if err != nil {
		if errors.Is(err, shared.ErrNoCredential) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		http.Error(w, "failed to load credential", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cred)
}

// refreshAuthToken refreshes the stored credential unconditionally and returns
// the new one, or JSON null when there is nothing to refresh or the provider
// rejects the refresh.
func (h *AuthHandler) refreshAuthToken(w http.ResponseWriter, r *http.Request) {
	cred, err := h.refresher.RefreshCredential(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNoCredential) || errors.Is(err, shared.ErrRefreshFailed) {
			h.logger.Warn("credential refresh failed", "error", err)
			writeJSON(w, http.StatusOK, nil)
			return
		}
		http.Error(w, "failed to store credential", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cred)
}

// randomState generates a random alphabetic token of length n.
func randomState(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i := range buf {
		buf[i] = stateLetters[int(buf[i])%len(stateLetters)]
	}

	return string(buf), nil
}
