package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/shared"
)

// ArtistHandler serves stored artist records and the on-demand sync endpoint.
// Implements the Handler interface for registration with a Router.
type ArtistHandler struct {
	artists ArtistStore
	syncer  ArtistSyncer
	logger  *log.Logger
}

// NewArtistHandler creates a new artist handler backed by the given store and sync engine.
func NewArtistHandler(artists ArtistStore, syncer ArtistSyncer, logger *log.Logger) *ArtistHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ArtistHandler{
		artists: artists,
		syncer:  syncer,
		logger:  logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ArtistHandler) Routes() []string {
	return []string{"/update_artists_from_spotify", "/artists", "/artist/"}
}

// ServeHTTP dispatches to the endpoint matching the request path and method.
func (h *ArtistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/update_artists_from_spotify":
		h.update(w, r)
	case r.URL.Path == "/artists":
		h.list(w, r)
	case strings.HasPrefix(r.URL.Path, "/artist/"):
		h.artist(w, r)
	default:
		http.NotFound(w, r)
	}
}

// update runs a fetch + reconcile cycle against the catalog and returns the
// merged records. Failures reaching the provider degrade to an empty list so
// periodic pollers see a well-formed body.
func (h *ArtistHandler) update(w http.ResponseWriter, r *http.Request) {
	merged, err := h.syncer.SyncArtists(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNoCredential) || errors.Is(err, shared.ErrFetchFailed) || errors.Is(err, shared.ErrRefreshFailed) {
			h.logger.Warn("sync unavailable", "error", err)
			writeJSON(w, http.StatusOK, []models.Artist{})
			return
		}
		h.logger.Error("sync failed", "error", err)
		http.Error(w, "failed to update artists", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, merged)
}

// list returns every stored artist ordered by id.
func (h *ArtistHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.artists.List()
	if err != nil {
		http.Error(w, "failed to list artists", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// artist handles the /artist/{id} subtree: GET retrieves, PUT upserts with
// manual-edit semantics, DELETE removes the record and its relations.
func (h *ArtistHandler) artist(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/artist/")

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.put(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ArtistHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	record, err := h.artists.Get(id)
	if err != nil {
		if errors.Is(err, shared.ErrArtistNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to load artist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// put applies the request body as an authoritative edit: the record is written
// even when it is flagged as manually modified, and the flag is set so later
// background syncs leave it alone.
func (h *ArtistHandler) put(w http.ResponseWriter, r *http.Request, id string) {
	var record models.Artist
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "invalid artist payload", http.StatusBadRequest)
		return
	}

	if id != "" {
		record.ID = id
	}
	if record.ID == "" {
		http.Error(w, "artist id is required", http.StatusBadRequest)
		return
	}

	merged, err := h.artists.Reconcile([]models.Artist{record}, false, true)
	if err != nil {
		h.logger.Error("failed to store artist", "error", err)
		http.Error(w, "failed to store artist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, merged[0])
}

func (h *ArtistHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.artists.Delete(id); err != nil {
		if errors.Is(err, shared.ErrArtistNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to delete artist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
