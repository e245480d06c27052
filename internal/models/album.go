package models

// Album belongs to exactly one [Artist]; (artist, title) is unique.
type Album struct {
	record
	artistID string
	title    string
	mbid     string
	url      string
	imageURL string
}

// NewAlbum creates an unsaved [Album] for the artist with the given ID.
func NewAlbum(sequence int, artistID, title, mbid, url, imageURL string) *Album {
	return &Album{
		record:   newRecord(sequence),
		artistID: artistID,
		title:    title,
		mbid:     mbid,
		url:      url,
		imageURL: imageURL,
	}
}

func (a *Album) ArtistID() string { return a.artistID }
func (a *Album) Title() string    { return a.title }
func (a *Album) MBID() string     { return a.mbid }
func (a *Album) URL() string      { return a.url }
func (a *Album) ImageURL() string { return a.imageURL }

func (a *Album) SetArtistID(id string) { a.artistID = id }

// Validate checks required fields and length limits.
func (a *Album) Validate() error {
	if err := checkRequired("album title", a.title, MaxTitleLength); err != nil {
		return err
	}
	if err := checkOptional("album mbid", a.mbid, MaxMBIDLength); err != nil {
		return err
	}
	if err := checkOptional("album url", a.url, MaxURLLength); err != nil {
		return err
	}
	return checkOptional("album image url", a.imageURL, MaxURLLength)
}
