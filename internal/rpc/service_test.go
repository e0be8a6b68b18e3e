package rpc

import (
	"context"
	"testing"

	"github.com/vic3r/spotify-search/internal/services"
	"github.com/vic3r/spotify-search/internal/shared"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// stubCatalog backs the aggregator with canned catalog data.
type stubCatalog struct {
	tracks   map[string]*services.Track
	features map[string]*services.AudioFeatures
	err      error
}

func (s *stubCatalog) SearchTracks(ctx context.Context, q string, limit, offset int) (*services.SearchResult, error) {
	return &services.SearchResult{}, nil
}

func (s *stubCatalog) GetTracks(ctx context.Context, ids []string) ([]*services.Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]*services.Track, len(ids))
	for i, id := range ids {
		result[i] = s.tracks[id]
	}
	return result, nil
}

func (s *stubCatalog) GetAudioFeatures(ctx context.Context, ids []string) ([]*services.AudioFeatures, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]*services.AudioFeatures, len(ids))
	for i, id := range ids {
		result[i] = s.features[id]
	}
	return result, nil
}

func newTestService(catalog *stubCatalog) *CatalogSearchService {
	return NewCatalogSearchService(services.NewAggregator(catalog, nil), nil)
}

func TestGetTracksWithFeatures(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty IDs Yield Empty Response", func(t *testing.T) {
		service := newTestService(&stubCatalog{})

		response, err := service.GetTracksWithFeatures(ctx, &GetTracksWithFeaturesRequest{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(response.Tracks) != 0 {
			t.Errorf("expected empty response, got %d tracks", len(response.Tracks))
		}
	})

	t.Run("Filters Entries Without Embeddings", func(t *testing.T) {
		// A has an embedding, B is unknown, C has metadata but no features
		catalog := &stubCatalog{
			tracks: map[string]*services.Track{
				"A": {ID: "A", Name: "Alpha", Artists: []services.Artist{{Name: "Artist"}}},
				"C": {ID: "C", Name: "Gamma"},
			},
			features: map[string]*services.AudioFeatures{
				"A": {ID: "A", Energy: 0.5, Key: 2, TimeSignature: 4},
			},
		}
		service := newTestService(catalog)

		response, err := service.GetTracksWithFeatures(ctx, &GetTracksWithFeaturesRequest{
			TrackIDs: []string{"A", "B", "C"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(response.Tracks) != 1 {
			t.Fatalf("expected only A to survive, got %d tracks", len(response.Tracks))
		}

		track := response.Tracks[0]
		if track.ID != "A" {
			t.Errorf("expected A, got %s", track.ID)
		}
		if len(track.Embedding) != services.EmbeddingDim {
			t.Errorf("expected %d-dim embedding, got %d", services.EmbeddingDim, len(track.Embedding))
		}
		if track.Metadata["title"] != "Alpha" || track.Metadata["artist"] != "Artist" {
			t.Errorf("unexpected metadata: %v", track.Metadata)
		}
	})

	t.Run("Oversized Request Maps To InvalidArgument", func(t *testing.T) {
		service := newTestService(&stubCatalog{})

		ids := make([]string, services.MaxTrackIDs+1)
		for i := range ids {
			ids[i] = "id"
		}

		_, err := service.GetTracksWithFeatures(ctx, &GetTracksWithFeaturesRequest{TrackIDs: ids})
		st, ok := status.FromError(err)
		if !ok {
			t.Fatalf("expected a status error, got %v", err)
		}
		if st.Code() != codes.InvalidArgument {
			t.Errorf("expected InvalidArgument, got %s", st.Code())
		}
	})

	t.Run("Upstream Failure Maps To Unavailable", func(t *testing.T) {
		catalog := &stubCatalog{err: &shared.UpstreamError{Op: "tracks", Status: 500, Body: "boom"}}
		service := newTestService(catalog)

		_, err := service.GetTracksWithFeatures(ctx, &GetTracksWithFeaturesRequest{TrackIDs: []string{"A"}})
		st, ok := status.FromError(err)
		if !ok {
			t.Fatalf("expected a status error, got %v", err)
		}
		if st.Code() != codes.Unavailable {
			t.Errorf("expected Unavailable, got %s", st.Code())
		}
	})

	t.Run("Auth Failure Maps To Unavailable", func(t *testing.T) {
		catalog := &stubCatalog{err: &shared.AuthError{Status: 401, Body: "bad credentials"}}
		service := newTestService(catalog)

		_, err := service.GetTracksWithFeatures(ctx, &GetTracksWithFeaturesRequest{TrackIDs: []string{"A"}})
		if st, _ := status.FromError(err); st.Code() != codes.Unavailable {
			t.Errorf("expected Unavailable, got %s", st.Code())
		}
	})
}

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}

	if codec.Name() != codecName {
		t.Errorf("expected codec name %q, got %q", codecName, codec.Name())
	}

	request := &GetTracksWithFeaturesRequest{TrackIDs: []string{"A", "B"}}
	data, err := codec.Marshal(request)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded GetTracksWithFeaturesRequest
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded.TrackIDs) != 2 || decoded.TrackIDs[0] != "A" {
		t.Errorf("expected round-tripped ids, got %v", decoded.TrackIDs)
	}
}
