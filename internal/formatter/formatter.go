// Package formatter provides functions to export catalog data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "markdown", "txt"}

var extensions = map[string]string{
	"json":     "json",
	"csv":      "csv",
	"markdown": "md",
	"txt":      "txt",
}

// ExportToCSV converts artists to CSV with one row per album.
//
// Columns: Artist, Artist MBID, Artist URL, Tags, Album, Album URL, Image URL. Artists without
// albums get a single row with empty album columns. Tags are joined with "; ".
func ExportToCSV(artists []models.ArtistDetail) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Artist", "Artist MBID", "Artist URL", "Tags", "Album", "Album URL", "Image URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, artist := range artists {
		prefix := []string{artist.Name, artist.MBID, artist.URL, strings.Join(artist.Tags, "; ")}

		if len(artist.Albums) == 0 {
			if err := writer.Write(append(prefix, "", "", "")); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}

		for _, album := range artist.Albums {
			record := append(append([]string{}, prefix...), album.Title, album.URL, album.ImageURL)
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

// ExportToMarkdown converts artists to a Markdown document with a section per artist
func ExportToMarkdown(artists []models.ArtistDetail) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Catalog\n\n")
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n\n", len(artists)))

	for _, artist := range artists {
		if artist.URL != "" {
			buf.WriteString(fmt.Sprintf("## [%s](%s)\n\n", artist.Name, artist.URL))
		} else {
			buf.WriteString(fmt.Sprintf("## %s\n\n", artist.Name))
		}

		if len(artist.Tags) > 0 {
			buf.WriteString(fmt.Sprintf("**Tags**: %s\n\n", strings.Join(artist.Tags, ", ")))
		}

		if len(artist.Albums) == 0 {
			buf.WriteString("_No albums_\n\n")
			continue
		}

		for i, album := range artist.Albums {
			title := album.Title
			if album.URL != "" {
				title = fmt.Sprintf("[%s](%s)", album.Title, album.URL)
			}
			buf.WriteString(fmt.Sprintf("%d. %s", i+1, title))
			if album.ImageURL != "" {
				buf.WriteString(fmt.Sprintf(" ![cover](%s)", album.ImageURL))
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts artists to plain text format
func ExportToText(artists []models.ArtistDetail) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Artists: %d\n\n", len(artists)))

	for i, artist := range artists {
		buf.WriteString(fmt.Sprintf("%d. %s", i+1, artist.Name))
		if len(artist.Tags) > 0 {
			buf.WriteString(fmt.Sprintf(" [%s]", strings.Join(artist.Tags, ", ")))
		}
		buf.WriteString("\n")

		for _, album := range artist.Albums {
			buf.WriteString(fmt.Sprintf("   - %s\n", album.Title))
		}
	}

	return buf.Bytes(), nil
}

// Export renders artists in the named format.
func Export(format string, artists []models.ArtistDetail) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(artists)
	case "markdown", "md":
		return ExportToMarkdown(artists)
	case "txt", "text":
		return ExportToText(artists)
	case "json":
		return shared.MarshalJSON(artists, true)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteExport renders artists in the named format and writes them to path.
//
// Defaults to catalog_export.{ext} as the filename.
func WriteExport(format string, artists []models.ArtistDetail, path string) (string, error) {
	data, err := Export(format, artists)
	if err != nil {
		return "", err
	}

	if path == "" {
		ext, ok := extensions[format]
		if !ok {
			ext = format
		}
		path = "catalog_export." + ext
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// ImportReport renders a plain text summary of an import with one line per artist and album.
func ImportReport(result *tasks.ImportResult) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("Tag: %s", result.Tag))
	if result.TagCreated {
		buf.WriteString(" (new)")
	}
	buf.WriteString("\n")

	if result.FetchError != "" {
		buf.WriteString(fmt.Sprintf("Could not fetch artists: %s\n", result.FetchError))
	}

	for i, artist := range result.Artists {
		buf.WriteString(fmt.Sprintf("%d. %s %s", i+1, StatusMark(artist.Status), displayName(artist.Name)))
		if artist.Error != "" {
			buf.WriteString(fmt.Sprintf(": %s", artist.Error))
		}
		buf.WriteString("\n")

		if artist.AlbumsFetchError != "" {
			buf.WriteString(fmt.Sprintf("   ! albums: %s\n", artist.AlbumsFetchError))
		}
		for _, album := range artist.Albums {
			buf.WriteString(fmt.Sprintf("   %s %s", StatusMark(album.Status), displayName(album.Title)))
			if album.Error != "" {
				buf.WriteString(fmt.Sprintf(": %s", album.Error))
			}
			buf.WriteString("\n")
		}
	}

	buf.WriteString(fmt.Sprintf(
		"\nArtists: %d imported, %d existing, %d skipped, %d failed\n",
		result.ArtistsImported, result.ArtistsExisting, result.ArtistsSkipped, result.ArtistsFailed,
	))
	buf.WriteString(fmt.Sprintf(
		"Albums: %d imported, %d existing, %d skipped, %d failed\n",
		result.AlbumsImported, result.AlbumsExisting, result.AlbumsSkipped, result.AlbumsFailed,
	))

	return buf.String()
}

// StatusMark returns a one-character marker for an item status.
func StatusMark(status tasks.ItemStatus) string {
	switch status {
	case tasks.StatusImported:
		return "+"
	case tasks.StatusExisting:
		return "="
	case tasks.StatusSkippedEmpty:
		return "-"
	case tasks.StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

func displayName(name string) string {
	if shared.IsBlank(name) {
		return "(blank)"
	}
	return name
}
