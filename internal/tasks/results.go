package tasks

import (
	"time"
)

// ItemStatus is the outcome of importing one artist or album.
type ItemStatus string

const (
	StatusImported     ItemStatus = "imported"      // created by this run
	StatusExisting     ItemStatus = "existing"      // already in the catalog and reused
	StatusSkippedEmpty ItemStatus = "skipped_empty" // remote entry had a blank name or title
	StatusFailed       ItemStatus = "failed"
)

// AlbumImportResult is the outcome for one remote album.
type AlbumImportResult struct {
	Title   string     `json:"title"`
	AlbumID string     `json:"albumId,omitempty"`
	Status  ItemStatus `json:"status"`
	Err     error      `json:"-"`
	Error   string     `json:"error,omitempty"`
}

func (r *AlbumImportResult) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Error = err.Error()
}

// ArtistImportResult is the outcome for one remote artist and its albums.
type ArtistImportResult struct {
	Name             string              `json:"name"`
	ArtistID         string              `json:"artistId,omitempty"`
	Status           ItemStatus          `json:"status"`
	Linked           bool                `json:"linked"` // a new link to the tag was created
	Err              error               `json:"-"`
	Error            string              `json:"error,omitempty"`
	AlbumsFetchError string              `json:"albumsFetchError,omitempty"`
	Albums           []AlbumImportResult `json:"albums"`
}

func (r *ArtistImportResult) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	r.Error = err.Error()
}

// ImportResult is the batch report of a single tag import.
type ImportResult struct {
	Tag        string               `json:"tag"`
	TagID      string               `json:"tagId,omitempty"`
	TagCreated bool                 `json:"tagCreated"`
	Limit      int                  `json:"limit"`
	FetchError string               `json:"fetchError,omitempty"` // top artists could not be fetched
	Artists    []ArtistImportResult `json:"artists"`

	ArtistsImported int `json:"artistsImported"`
	ArtistsExisting int `json:"artistsExisting"`
	ArtistsSkipped  int `json:"artistsSkipped"`
	ArtistsFailed   int `json:"artistsFailed"`
	LinksCreated    int `json:"linksCreated"`
	AlbumsImported  int `json:"albumsImported"`
	AlbumsExisting  int `json:"albumsExisting"`
	AlbumsSkipped   int `json:"albumsSkipped"`
	AlbumsFailed    int `json:"albumsFailed"`

	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   time.Duration `json:"duration"`
}

func newImportResult(tag string, limit int) *ImportResult {
	return &ImportResult{
		Tag:       tag,
		Limit:     limit,
		Artists:   []ArtistImportResult{},
		StartedAt: time.Now(),
	}
}

// record appends an artist outcome and updates the counters.
func (r *ImportResult) record(ar ArtistImportResult) {
	r.Artists = append(r.Artists, ar)

	switch ar.Status {
	case StatusImported:
		r.ArtistsImported++
	case StatusExisting:
		r.ArtistsExisting++
	case StatusSkippedEmpty:
		r.ArtistsSkipped++
	case StatusFailed:
		r.ArtistsFailed++
	}
	if ar.Linked {
		r.LinksCreated++
	}

	for _, album := range ar.Albums {
		switch album.Status {
		case StatusImported:
			r.AlbumsImported++
		case StatusExisting:
			r.AlbumsExisting++
		case StatusSkippedEmpty:
			r.AlbumsSkipped++
		case StatusFailed:
			r.AlbumsFailed++
		}
	}
}

func (r *ImportResult) finish() {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)
}

// TagImportResult is one tag's entry in a [BulkImportResult].
type TagImportResult struct {
	Tag    string        `json:"tag"`
	Result *ImportResult `json:"result,omitempty"`
	Err    error         `json:"-"`
	Error  string        `json:"error,omitempty"`
}

// BulkImportResult is the report of a multi-tag import.
type BulkImportResult struct {
	Tags      []TagImportResult `json:"tags"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Duration  time.Duration     `json:"duration"`
}
