// package formatter renders search and lookup results for the CLI (table, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vic3r/spotify-search/internal/services"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	missingStyle = lipgloss.NewStyle().Faint(true).Italic(true)
)

// FormatDuration renders a millisecond duration as m:ss.
func FormatDuration(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RenderTable renders joined tracks as an aligned table for terminal output.
// Tracks without a feature record get a dimmed "no features" marker.
func RenderTable(items []services.TrackWithFeatures) string {
	if len(items) == 0 {
		return missingStyle.Render("no results")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-3s %-40s %-28s %-24s %8s  %s",
		"#", "Title", "Artist", "Album", "Length", "Features")))
	b.WriteString("\n")

	for i, item := range items {
		features := dimStyle.Render("—")
		if item.Features != nil {
			features = fmt.Sprintf("%d-dim", len(item.Embedding))
		}

		b.WriteString(fmt.Sprintf("%-3d %s %-28s %-24s %8s  %s",
			i+1,
			titleStyle.Render(fmt.Sprintf("%-40s", truncate(item.Track.Name, 40))),
			truncate(item.Track.ArtistNames(), 28),
			truncate(item.Track.Album.Name, 24),
			FormatDuration(item.Track.DurationMS),
			features,
		))
		b.WriteString("\n")
	}

	return b.String()
}

// ExportToCSV converts joined tracks to CSV with columns: ID, Title, Artist,
// Album, DurationMS, Embedding. The embedding column is semicolon-joined, or
// empty when the track has no feature record.
func ExportToCSV(items []services.TrackWithFeatures) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "DurationMS", "Embedding"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.Track.ID,
			item.Track.Name,
			item.Track.ArtistNames(),
			item.Track.Album.Name,
			strconv.Itoa(item.Track.DurationMS),
			joinEmbedding(item.Embedding),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func joinEmbedding(embedding []float64) string {
	if embedding == nil {
		return ""
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
