package rpc

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/vic3r/spotify-search/internal/services"
	"github.com/vic3r/spotify-search/internal/shared"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CatalogSearchService implements [CatalogSearchServer] over the aggregation
// engine.
type CatalogSearchService struct {
	aggregator *services.Aggregator
	logger     *log.Logger
}

var _ CatalogSearchServer = (*CatalogSearchService)(nil)

// NewCatalogSearchService creates the gRPC service implementation.
func NewCatalogSearchService(aggregator *services.Aggregator, logger *log.Logger) *CatalogSearchService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CatalogSearchService{
		aggregator: aggregator,
		logger:     shared.WithLogger(logger, "component", "grpc"),
	}
}

// GetTracksWithFeatures returns joined metadata and embeddings for the
// requested ids. Entries without an embedding are filtered out: the callers
// of this surface exist to feed vectors into similarity search. An empty id
// list yields an empty response rather than an error.
func (s *CatalogSearchService) GetTracksWithFeatures(ctx context.Context, req *GetTracksWithFeaturesRequest) (*GetTracksWithFeaturesResponse, error) {
	if len(req.TrackIDs) == 0 {
		return &GetTracksWithFeaturesResponse{}, nil
	}

	joined, err := s.aggregator.GetTracksWithFeatures(ctx, req.TrackIDs)
	if err != nil {
		s.logger.Error("aggregation failed", "error", err)
		return nil, statusFromError(err)
	}

	tracks := make([]*TrackWithFeatures, 0, len(joined))
	for _, item := range joined {
		if item.Embedding == nil {
			continue
		}

		metadata := map[string]string{
			"spotify_id": item.Track.ID,
			"title":      item.Track.Name,
			"artist":     item.Track.ArtistNames(),
			"album":      item.Track.Album.Name,
		}
		if url := item.Track.SpotifyURL(); url != "" {
			metadata["spotify_url"] = url
		}

		tracks = append(tracks, &TrackWithFeatures{
			ID:        item.Track.ID,
			Embedding: item.Embedding,
			Metadata:  metadata,
		})
	}

	return &GetTracksWithFeaturesResponse{Tracks: tracks}, nil
}

// statusFromError maps the service error taxonomy onto gRPC status codes.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case shared.IsGatewayError(err):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
