package models

// ArtistSummary is the list view of an artist.
type ArtistSummary struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	URL  string   `json:"url,omitempty"`
	Tags []string `json:"tags"`
}

// ArtistDetail is the full view of an artist with its albums.
type ArtistDetail struct {
	ArtistSummary
	MBID   string         `json:"mbid,omitempty"`
	Albums []AlbumSummary `json:"albums"`
}

// AlbumSummary is the view of an album nested in [ArtistDetail].
type AlbumSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// TagSummary is the list view of a tag.
type TagSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistCount int    `json:"artistCount"`
}

// CatalogStats counts catalog rows.
type CatalogStats struct {
	Artists    int `json:"artists"`
	Albums     int `json:"albums"`
	Tags       int `json:"tags"`
	ArtistTags int `json:"artistTags"`
}
