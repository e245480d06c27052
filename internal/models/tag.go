package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/lfx/internal/shared"
)

// Tag is a genre label, unique by name.
type Tag struct {
	record
	name string
}

// NewTag creates an unsaved [Tag].
func NewTag(sequence int, name string) *Tag {
	return &Tag{record: newRecord(sequence), name: name}
}

func (t *Tag) Name() string { return t.name }

// Validate checks the name is present and within limits.
func (t *Tag) Validate() error {
	return checkRequired("tag name", t.name, MaxTagLength)
}

// ArtistTag links an artist to a tag. The (ArtistID, TagID) pair is its identity.
type ArtistTag struct {
	ArtistID  string
	TagID     string
	CreatedAt time.Time
}

// NewArtistTag creates an unsaved link between artist and tag.
func NewArtistTag(artist *Artist, tag *Tag) *ArtistTag {
	return &ArtistTag{ArtistID: artist.ID(), TagID: tag.ID(), CreatedAt: time.Now().UTC()}
}

// Validate checks both sides of the link have been persisted.
func (at *ArtistTag) Validate() error {
	if at.ArtistID == "" || at.TagID == "" {
		return fmt.Errorf("%w: artist tag requires saved artist and tag", shared.ErrInvalidInput)
	}
	return nil
}
