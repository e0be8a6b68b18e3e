package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"github.com/vic3r/spotify-search/internal/services"
	"github.com/vic3r/spotify-search/internal/shared"
	mocks "github.com/vic3r/spotify-search/internal/testing"
)

// fakeCatalog serves canned data to CLI commands.
type fakeCatalog struct {
	searchResult *services.SearchResult
	tracks       map[string]*services.Track
	features     map[string]*services.AudioFeatures
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, q string, limit, offset int) (*services.SearchResult, error) {
	if f.searchResult == nil {
		return &services.SearchResult{}, nil
	}
	return f.searchResult, nil
}

func (f *fakeCatalog) GetTracks(ctx context.Context, ids []string) ([]*services.Track, error) {
	result := make([]*services.Track, len(ids))
	for i, id := range ids {
		result[i] = f.tracks[id]
	}
	return result, nil
}

func (f *fakeCatalog) GetAudioFeatures(ctx context.Context, ids []string) ([]*services.AudioFeatures, error) {
	result := make([]*services.AudioFeatures, len(ids))
	for i, id := range ids {
		result[i] = f.features[id]
	}
	return result, nil
}

// runApp runs the CLI against a fake catalog and captures output.
func runApp(t *testing.T, catalog services.Catalog, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	var buf bytes.Buffer

	runner := NewRunner(RunnerOpts{
		Config:  &shared.Config{},
		Output:  &buf,
		Catalog: catalog,
	})
	app := &cli.Command{
		Name:     "spotify-search",
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), append([]string{"spotify-search"}, args...))
	return &buf, err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected config to default")
		}
		if runner.logger == nil {
			t.Error("expected logger to default")
		}
		if runner.output != os.Stdout {
			t.Error("expected output to default to os.Stdout")
		}
		if runner.httpClient != http.DefaultClient {
			t.Error("expected http client to default to http.DefaultClient")
		}
	})

	t.Run("NewRunner With Options", func(t *testing.T) {
		var buf bytes.Buffer
		config := &shared.Config{}
		catalog := &fakeCatalog{}

		runner := NewRunner(RunnerOpts{
			Config:  config,
			Output:  &buf,
			Catalog: catalog,
		})

		if runner.config != config {
			t.Error("expected provided config to be used")
		}
		if runner.output != &buf {
			t.Error("expected provided output to be used")
		}
		if runner.catalog != catalog {
			t.Error("expected provided catalog to be used")
		}
	})
}

func TestSearchCommand(t *testing.T) {
	catalog := &fakeCatalog{
		searchResult: &services.SearchResult{
			Items: []services.Track{
				{ID: "t1", Name: "First Song", Artists: []services.Artist{{Name: "Artist"}}},
			},
			Total: 1,
		},
		features: map[string]*services.AudioFeatures{
			"t1": {ID: "t1", Energy: 0.5},
		},
	}

	t.Run("Missing Query", func(t *testing.T) {
		_, err := runApp(t, catalog, "search")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("JSON Output", func(t *testing.T) {
		buf, err := runApp(t, catalog, "search", "--json", "first")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var items []services.TrackWithFeatures
		if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(items) != 1 || items[0].Track.ID != "t1" {
			t.Errorf("unexpected items: %+v", items)
		}
		if items[0].Features != nil {
			t.Error("expected no features without --features")
		}
	})

	t.Run("JSON With Features", func(t *testing.T) {
		buf, err := runApp(t, catalog, "search", "--json", "--features", "first")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var items []services.TrackWithFeatures
		if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0].Features == nil || len(items[0].Embedding) != services.EmbeddingDim {
			t.Error("expected features and embedding joined onto the result")
		}
	})

	t.Run("Write Failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:  &shared.Config{},
			Output:  &mocks.FWriter{},
			Catalog: catalog,
		})

		if err := runner.writeJSON(map[string]string{"k": "v"}, false); err == nil {
			t.Error("expected a write error to propagate")
		}
	})

	t.Run("Table Output", func(t *testing.T) {
		buf, err := runApp(t, catalog, "search", "first")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(buf.String(), "First Song") {
			t.Errorf("expected table with track title, got %q", buf.String())
		}
	})
}

func TestTracksCommand(t *testing.T) {
	catalog := &fakeCatalog{
		tracks: map[string]*services.Track{
			"A": {ID: "A", Name: "Alpha"},
		},
		features: map[string]*services.AudioFeatures{
			"A": {ID: "A", Energy: 0.4},
		},
	}

	t.Run("Missing IDs", func(t *testing.T) {
		_, err := runApp(t, catalog, "tracks")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("CSV Output", func(t *testing.T) {
		buf, err := runApp(t, catalog, "tracks", "--csv", "A,B")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header plus one record (unknown id dropped), got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[1], "A,Alpha") {
			t.Errorf("unexpected record: %q", lines[1])
		}
	})

	t.Run("JSON Output", func(t *testing.T) {
		buf, err := runApp(t, catalog, "tracks", "--json", "A")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var items []services.TrackWithFeatures
		if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(items) != 1 || items[0].Embedding == nil {
			t.Errorf("expected one joined item with embedding, got %+v", items)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	buf, err := runApp(t, &fakeCatalog{}, "setup", "--config", path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
	if !strings.Contains(buf.String(), path) {
		t.Errorf("expected confirmation message naming the path, got %q", buf.String())
	}
}
