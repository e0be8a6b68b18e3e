// package services implements the credential-cached Spotify aggregation client.
//
// SpotifyService wraps the three upstream catalog endpoints behind the Catalog
// interface; Aggregator composes them into joined track+features results.
package services

import (
	"context"
	"strings"
)

// Per-endpoint id caps imposed by the Spotify Web API.
const (
	MaxTrackIDs         = 50
	MaxAudioFeatureIDs  = 100
	MaxSearchLimit      = 50
	MaxSearchOffset     = 1000
	DefaultSearchLimit  = 20
	DefaultSearchOffset = 0
)

// Catalog defines the upstream operations the aggregation engine and the
// front-ends compose. Implemented by [SpotifyService]; front-end and
// aggregator tests substitute a double.
type Catalog interface {
	// SearchTracks searches the catalog. limit and offset are clamped to the
	// upstream bounds before sending, never rejected.
	SearchTracks(ctx context.Context, q string, limit, offset int) (*SearchResult, error)

	// GetTracks retrieves up to MaxTrackIDs tracks by id. The result is
	// positional over ids: entries the upstream has no record for are nil.
	GetTracks(ctx context.Context, ids []string) ([]*Track, error)

	// GetAudioFeatures retrieves up to MaxAudioFeatureIDs feature records by
	// id, with the same positional-nil contract as GetTracks.
	GetAudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error)
}

// Track represents a Spotify track (simplified).
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// ArtistNames joins the track's artist names with ", ".
func (t *Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// SpotifyURL returns the track's public Spotify URL, if any.
func (t *Track) SpotifyURL() string {
	return t.ExternalURLs.Spotify
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents a Spotify album.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// ImageURL returns the URL of the album's primary image, or "" when none exists.
func (a Album) ImageURL() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[0].URL
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs holds public links for a catalog object.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// AudioFeatures represents the scalar audio descriptors for one track.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Key              int     `json:"key"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	Valence          float64 `json:"valence"`
}

// SearchResult is one page of track search results.
type SearchResult struct {
	Items  []Track
	Total  int
	Limit  int
	Offset int
}

// TrackWithFeatures pairs a track with its audio features and derived
// embedding. Features and Embedding are nil when the upstream has no feature
// record for the track; that absence is data, not a failure.
type TrackWithFeatures struct {
	Track     Track
	Features  *AudioFeatures
	Embedding []float64
}

// SearchWithFeaturesResult is one page of search results joined with features.
type SearchWithFeaturesResult struct {
	Items  []TrackWithFeatures
	Total  int
	Limit  int
	Offset int
}
