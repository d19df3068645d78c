// package formatter exports cached listening data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
)

// windowLabels maps a TimeWindowed collection's windows to display headings.
var windowLabels = []string{"Last 4 Weeks", "Last 6 Months", "All Time"}

// TracksToCSV converts the track windows of a bundle to CSV with columns:
// Window, Rank, ID, Title, Artists, Album, Duration, Popularity
func TracksToCSV(bundle *models.DataBundle) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Window", "Rank", "ID", "Title", "Artists", "Album", "Duration", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, window := range bundle.TopTracks.Windows() {
		for rank, track := range window {
			record := []string{
				windowLabels[i],
				strconv.Itoa(rank + 1),
				track.ID,
				track.Name,
				strings.Join(track.ArtistNames, "; "),
				track.AlbumName,
				shared.FormatTrackDuration(track.DurationMS),
				strconv.Itoa(track.Popularity),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a bundle as a Markdown taste report.
func ToMarkdown(bundle *models.DataBundle) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Listening Report\n\n")
	buf.WriteString(fmt.Sprintf("**Fetched**: %s\n", bundle.FetchedAt.Format("2006-01-02 15:04")))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d | **Artists**: %d\n\n",
		bundle.TopTracks.Total(), bundle.TopArtists.Total()))

	if len(bundle.Insights.TopGenres) > 0 {
		buf.WriteString(fmt.Sprintf("**Genres**: %s\n\n", strings.Join(bundle.Insights.TopGenres, ", ")))
	}

	for i, window := range bundle.TopTracks.Windows() {
		if len(window) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("## Top Tracks - %s\n\n", windowLabels[i]))
		for rank, track := range window {
			albumPart := ""
			if track.AlbumName != "" {
				albumPart = fmt.Sprintf(" (%s)", track.AlbumName)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n",
				rank+1, strings.Join(track.ArtistNames, ", "), track.Name, albumPart,
				shared.FormatTrackDuration(track.DurationMS)))
		}
		buf.WriteString("\n")
	}

	for i, window := range bundle.TopArtists.Windows() {
		if len(window) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("## Top Artists - %s\n\n", windowLabels[i]))
		for rank, artist := range window {
			genrePart := ""
			if len(artist.Genres) > 0 {
				genrePart = fmt.Sprintf(" (%s)", strings.Join(artist.Genres, ", "))
			}
			buf.WriteString(fmt.Sprintf("%d. %s%s\n", rank+1, artist.Name, genrePart))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Insights\n\n")
	buf.WriteString(fmt.Sprintf("- Consistency: %.0f/100\n", bundle.Insights.ConsistencyScore))
	buf.WriteString(fmt.Sprintf("- Mainstream: %.0f/100\n", bundle.Insights.MainstreamScore))
	buf.WriteString(fmt.Sprintf("- Distinct artists: %d\n", bundle.Insights.ArtistDiversityCount))
	buf.WriteString(fmt.Sprintf("- Distinct tracks: %d\n", bundle.Insights.TrackDiversityCount))
	for _, repeat := range bundle.Insights.RepeatListens {
		buf.WriteString(fmt.Sprintf("- On repeat: %s (x%d)\n", repeat.TrackID, repeat.Count))
	}

	return buf.Bytes(), nil
}

// SummaryToText renders the headline projection as plain text.
func SummaryToText(summary *models.Summary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top track: %s\n", summary.TopTrack))
	buf.WriteString(fmt.Sprintf("Top artist: %s\n", summary.TopArtist))
	if len(summary.TopGenres) > 0 {
		buf.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(summary.TopGenres, ", ")))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d | Artists: %d\n", summary.TotalTracks, summary.TotalArtists))
	if !summary.LastUpdated.IsZero() {
		buf.WriteString(fmt.Sprintf("Updated: %s\n", summary.LastUpdated.Format("2006-01-02 15:04")))
	}

	return buf.Bytes()
}

// RoastToText wraps generated roast text for terminal display.
func RoastToText(persona, severity, text string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s (%s)\n\n", persona, severity))
	buf.WriteString(text)
	buf.WriteString("\n")
	return buf.Bytes()
}

// ToJSON generates an indented JSON representation of any projection.
func ToJSON(v any) ([]byte, error) {
	return shared.MarshalJSON(v, true)
}

// ExportResult contains the paths of files created by WriteExport.
type ExportResult struct {
	TracksFile string
	ReportFile string
}

// WriteExport writes the bundle's tracks CSV and Markdown report to disk.
//
// Defaults to "riff_export" as the base filename & creates {base}_tracks.csv
// and {base}_report.md
func WriteExport(bundle *models.DataBundle, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "riff_export"
	}

	csvData, err := TracksToCSV(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	mdData, err := ToMarkdown(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	reportFile := baseFilepath + "_report.md"
	if err := os.WriteFile(reportFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	return &ExportResult{
		TracksFile: tracksFile,
		ReportFile: reportFile,
	}, nil
}
