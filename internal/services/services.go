package services

import (
	"context"
)

// Provider is a remote catalog that lists artists by tag and albums by artist.
type Provider interface {
	// TopArtistsForTag returns up to limit artists for the tag, in the provider's ranking order.
	TopArtistsForTag(ctx context.Context, tag string, limit int) ([]Artist, error)

	// TopAlbumsForArtist returns up to limit albums for the artist name, in the provider's ranking order.
	TopAlbumsForArtist(ctx context.Context, artist string, limit int) ([]Album, error)

	// Name returns the name of the provider (e.g., "Last.fm")
	Name() string
}

// Artist is an artist as listed by a remote catalog. Name may be blank.
//
// Err is set when the entry could not be decoded; Name then holds whatever could be recovered.
type Artist struct {
	Name string
	MBID string
	URL  string
	Err  error
}

// Album is an album as listed by a remote catalog. Title may be blank.
type Album struct {
	Title    string
	MBID     string
	URL      string
	ImageURL string // largest available cover image
	Err      error  // entry could not be decoded
}
