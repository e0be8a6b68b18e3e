package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vic3r/spotify-search/internal/services"
	"github.com/vic3r/spotify-search/internal/shared"
)

// Handlers contains the HTTP handlers for the gateway's REST surface.
type Handlers struct {
	catalog    services.Catalog
	aggregator *services.Aggregator
	logger     *log.Logger
}

// NewHandlers creates a Handlers instance over the catalog and aggregator.
func NewHandlers(catalog services.Catalog, aggregator *services.Aggregator, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Handlers{
		catalog:    catalog,
		aggregator: aggregator,
		logger:     logger,
	}
}

// SearchResponse is the JSON body for search and batch-lookup responses.
type SearchResponse struct {
	Tracks []TrackResponse `json:"tracks"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// TrackResponse is a single track in an API response.
type TrackResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	URI        string           `json:"uri"`
	DurationMS int              `json:"duration_ms"`
	Explicit   bool             `json:"explicit"`
	Artists    []ArtistResponse `json:"artists"`
	Album      AlbumResponse    `json:"album"`
	SpotifyURL string           `json:"spotify_url,omitempty"`
	// Embedding is present when the caller asked for features and the
	// upstream had a feature record for this track.
	Embedding []float64 `json:"embedding,omitempty"`
	// Metadata carries the flat string fields downstream importers consume.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ArtistResponse is a track artist in an API response.
type ArtistResponse struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// AlbumResponse is a track album in an API response.
type AlbumResponse struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

func trackResponse(t services.Track, embedding []float64) TrackResponse {
	artists := make([]ArtistResponse, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = ArtistResponse{ID: a.ID, Name: a.Name}
	}

	metadata := map[string]string{
		"spotify_id": t.ID,
		"title":      t.Name,
		"artist":     t.ArtistNames(),
		"album":      t.Album.Name,
	}
	if url := t.SpotifyURL(); url != "" {
		metadata["spotify_url"] = url
	}

	return TrackResponse{
		ID:         t.ID,
		Name:       t.Name,
		URI:        t.URI,
		DurationMS: t.DurationMS,
		Explicit:   t.Explicit,
		Artists:    artists,
		Album: AlbumResponse{
			ID:       t.Album.ID,
			Name:     t.Album.Name,
			ImageURL: t.Album.ImageURL(),
		},
		SpotifyURL: t.SpotifyURL(),
		Embedding:  embedding,
		Metadata:   metadata,
	}
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search handles GET /api/v1/search.
//
// Query parameters: q (required), limit (1-50, default 20), offset (0-1000),
// include_features (bool, joins audio features and embeddings onto each track).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "query 'q' is required and cannot be empty")
		return
	}

	limit := intParam(r, "limit", 0)
	offset := intParam(r, "offset", 0)
	includeFeatures, _ := strconv.ParseBool(r.URL.Query().Get("include_features"))

	var response SearchResponse

	if includeFeatures {
		result, err := h.aggregator.SearchWithFeatures(r.Context(), q, limit, offset)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		response = SearchResponse{
			Tracks: make([]TrackResponse, len(result.Items)),
			Total:  result.Total,
			Limit:  result.Limit,
			Offset: result.Offset,
		}
		for i, item := range result.Items {
			response.Tracks[i] = trackResponse(item.Track, item.Embedding)
		}
	} else {
		result, err := h.catalog.SearchTracks(r.Context(), q, limit, offset)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		response = SearchResponse{
			Tracks: make([]TrackResponse, len(result.Items)),
			Total:  result.Total,
			Limit:  result.Limit,
			Offset: result.Offset,
		}
		for i, t := range result.Items {
			response.Tracks[i] = trackResponse(t, nil)
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// TracksWithFeatures handles GET /api/v1/tracks/with-features.
//
// The ids parameter is a comma-separated list of track ids (max 50). Entries
// the catalog has no metadata for are omitted from the response.
func (h *Handlers) TracksWithFeatures(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "ids is required (comma-separated track IDs)")
		return
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "at least one track id required")
		return
	}

	joined, err := h.aggregator.GetTracksWithFeatures(r.Context(), ids)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := SearchResponse{
		Tracks: make([]TrackResponse, len(joined)),
		Total:  len(joined),
		Limit:  len(joined),
		Offset: 0,
	}
	for i, item := range joined {
		response.Tracks[i] = trackResponse(item.Track, item.Embedding)
	}

	writeJSON(w, http.StatusOK, response)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// invalid input → 400, upstream/auth failures → 502, anything else → 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case shared.IsGatewayError(err):
		h.logger.Error("upstream call failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
