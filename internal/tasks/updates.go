package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	EnsureTag Phase = iota
	FetchArtists
	ImportArtist
	FetchAlbums
	ImportAlbum
	Complete
)

func (p Phase) String() string {
	switch p {
	case EnsureTag:
		return "ensure_tag"
	case FetchArtists:
		return "fetch_artists"
	case ImportArtist:
		return "import_artist"
	case FetchAlbums:
		return "fetch_albums"
	case ImportAlbum:
		return "import_album"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func ensureTagUpdate(tag string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnsureTag,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Ensuring tag %q exists...", tag),
	}
}

func fetchArtistsUpdate(tag string, limit int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching top %d artists for %q...", limit, tag),
	}
}

func importArtistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func fetchAlbumsUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching albums for %s...", step, total, name),
	}
}

func importAlbumUpdate(step, total int, res AlbumImportResult) ProgressUpdate {
	mark := "✓"
	switch res.Status {
	case StatusFailed:
		mark = "✗"
	case StatusExisting, StatusSkippedEmpty:
		mark = "-"
	}
	return ProgressUpdate{
		Phase:   ImportAlbum,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("  [%d/%d] %s %s", step, total, mark, res.Title),
		Data:    res,
	}
}

func completeUpdate(result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Complete,
		Step:  len(result.Artists),
		Total: len(result.Artists),
		Message: fmt.Sprintf("Imported %d artists (%d existing, %d failed) and %d albums for %q",
			result.ArtistsImported, result.ArtistsExisting, result.ArtistsFailed, result.AlbumsImported, result.Tag),
		Data: result,
	}
}
