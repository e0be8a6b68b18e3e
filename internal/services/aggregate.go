package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vic3r/spotify-search/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Aggregator composes [Catalog] calls into joined track+features results.
type Aggregator struct {
	catalog Catalog
	logger  *log.Logger
}

// NewAggregator creates an Aggregator over the given catalog.
func NewAggregator(catalog Catalog, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Aggregator{
		catalog: catalog,
		logger:  shared.WithLogger(logger, "component", "aggregator"),
	}
}

// GetTracksWithFeatures fetches track metadata and audio features for ids
// concurrently and joins them by position over the input id list.
//
// A nil track at a position drops that entry entirely; a nil feature record
// keeps the entry with nil Features/Embedding. Input order is preserved minus
// dropped entries. The first upstream failure aborts both fetches and
// propagates.
func (a *Aggregator) GetTracksWithFeatures(ctx context.Context, ids []string) ([]TrackWithFeatures, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one track id required", shared.ErrInvalidInput)
	}
	if len(ids) > MaxTrackIDs {
		return nil, fmt.Errorf("%w: at most %d track ids per request", shared.ErrInvalidInput, MaxTrackIDs)
	}

	var (
		tracks   []*Track
		features []*AudioFeatures
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tracks, err = a.catalog.GetTracks(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		features, err = a.catalog.GetAudioFeatures(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined := make([]TrackWithFeatures, 0, len(ids))
	for i := range ids {
		if i >= len(tracks) || tracks[i] == nil {
			// no catalog metadata for this id, nothing useful to return
			a.logger.Debug("dropping id without catalog metadata", "id", ids[i])
			continue
		}

		tw := TrackWithFeatures{Track: *tracks[i]}
		if i < len(features) && features[i] != nil {
			tw.Features = features[i]
			tw.Embedding = Embedding(features[i])
		}
		joined = append(joined, tw)
	}

	return joined, nil
}

// SearchWithFeatures searches the catalog, then fetches audio features for the
// returned page in its exact order.
//
// Unlike the id-based join, entries are never dropped here: every item came
// from search itself, so only Features/Embedding may be absent.
func (a *Aggregator) SearchWithFeatures(ctx context.Context, q string, limit, offset int) (*SearchWithFeaturesResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", shared.ErrInvalidInput)
	}

	page, err := a.catalog.SearchTracks(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]TrackWithFeatures, len(page.Items))
	for i, t := range page.Items {
		items[i] = TrackWithFeatures{Track: t}
	}

	if len(page.Items) > 0 {
		ids := make([]string, len(page.Items))
		for i, t := range page.Items {
			ids[i] = t.ID
		}

		features, err := a.catalog.GetAudioFeatures(ctx, ids)
		if err != nil {
			return nil, err
		}

		for i := range items {
			if i < len(features) && features[i] != nil {
				items[i].Features = features[i]
				items[i].Embedding = Embedding(features[i])
			}
		}
	}

	return &SearchWithFeaturesResult{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}
