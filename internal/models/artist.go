package models

// Artist is a catalog artist, unique by exact name.
//
// Albums and Tags are only populated when the artist was loaded with its relations
// (or attached to it during the current import run).
type Artist struct {
	record
	name   string
	mbid   string
	url    string
	albums []*Album
	tags   []*Tag
}

// NewArtist creates an unsaved [Artist].
func NewArtist(sequence int, name, mbid, url string) *Artist {
	return &Artist{record: newRecord(sequence), name: name, mbid: mbid, url: url}
}

func (a *Artist) Name() string     { return a.name }
func (a *Artist) MBID() string     { return a.mbid }
func (a *Artist) URL() string      { return a.url }
func (a *Artist) Albums() []*Album { return a.albums }
func (a *Artist) Tags() []*Tag     { return a.tags }

// AddAlbum attaches album to the artist's loaded collection.
func (a *Artist) AddAlbum(album *Album) {
	album.artistID = a.id
	a.albums = append(a.albums, album)
}

// AddTag attaches tag to the artist's loaded collection unless already present.
func (a *Artist) AddTag(tag *Tag) {
	if a.HasTag(tag.ID()) {
		return
	}
	a.tags = append(a.tags, tag)
}

// HasAlbum reports whether a loaded album has exactly this title.
// The comparison is case-sensitive.
func (a *Artist) HasAlbum(title string) bool {
	for _, album := range a.albums {
		if album.title == title {
			return true
		}
	}
	return false
}

// HasTag reports whether the artist is linked to the tag with the given ID.
func (a *Artist) HasTag(tagID string) bool {
	for _, tag := range a.tags {
		if tag.ID() == tagID {
			return true
		}
	}
	return false
}

// Validate checks required fields and length limits.
func (a *Artist) Validate() error {
	if err := checkRequired("artist name", a.name, MaxNameLength); err != nil {
		return err
	}
	if err := checkOptional("artist mbid", a.mbid, MaxMBIDLength); err != nil {
		return err
	}
	return checkOptional("artist url", a.url, MaxURLLength)
}
