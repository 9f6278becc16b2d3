// package formatter renders library listings and queue plans for the CLI (plain text, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// SongsToText renders one path per line; detailed adds the feature vector.
func SongsToText(songs []*models.Song, detailed bool) []byte {
	var buf bytes.Buffer
	for _, song := range songs {
		if detailed {
			fmt.Fprintf(&buf, "%s (%s): %v\n", song.Path, DurationString(song), []float64(song.Features))
		} else {
			fmt.Fprintf(&buf, "%s\n", song.Path)
		}
	}
	return buf.Bytes()
}

// SongsToCSV renders the analyzed library with columns: Path, Title, Artist, Album, Track, Genre, Duration
func SongsToCSV(songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Path", "Title", "Artist", "Album", "Track", "Genre", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.Path,
			song.Meta.Title,
			song.Meta.Artist,
			song.Meta.Album,
			song.Meta.TrackNumber,
			song.Meta.Genre,
			strconv.FormatFloat(song.Meta.Duration, 'f', -1, 64),
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

// FailedToText renders analysis failures as "path: cause" lines.
func FailedToText(entries []models.FailedEntry) []byte {
	var buf bytes.Buffer
	if len(entries) == 0 {
		buf.WriteString("No analysis failures.\n")
		return buf.Bytes()
	}
	for _, e := range entries {
		cause := e.Error
		if cause == "" {
			cause = "unknown error"
		}
		fmt.Fprintf(&buf, "%s: %s\n", e.Path, cause)
	}
	return buf.Bytes()
}

// PlanToText renders a dry-run reconciliation: the anchor and the songs
// that would be queued after it.
func PlanToText(anchorPath string, additions []string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Would queue %d song(s) after %s:\n", len(additions), anchorPath)
	for i, path := range additions {
		fmt.Fprintf(&buf, "  %d. %s\n", i+1, path)
	}
	return buf.Bytes()
}

// DurationString formats a song duration for display.
func DurationString(song *models.Song) string {
	return shared.FormatDuration(song.Meta.Duration)
}
