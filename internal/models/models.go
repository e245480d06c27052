// Package models defines the data model for the lfx music catalog
package models

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/lfx/internal/shared"
)

// Field length limits enforced by [Model.Validate] and the database schema.
const (
	MaxNameLength  = 300
	MaxTitleLength = 300
	MaxTagLength   = 100
	MaxMBIDLength  = 64
	MaxURLLength   = 1024
)

// Model defines the base interface for all persistent models in the catalog.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// CatalogStore opens units of work against the catalog.
type CatalogStore interface {
	Begin(ctx context.Context) (CatalogTx, error)
}

// CatalogTx stages lookups and creations that become durable together on Commit.
//
// A CatalogTx is not safe for concurrent use. Rollback after Commit is a no-op.
type CatalogTx interface {
	FindTagByName(ctx context.Context, name string) (*Tag, error)
	CreateTag(ctx context.Context, name string) (*Tag, error)

	// FindArtistByName looks up an artist by exact name; withRelations loads its albums and tags.
	FindArtistByName(ctx context.Context, name string, withRelations bool) (*Artist, error)
	CreateArtist(ctx context.Context, artist *Artist) error

	// AddArtistTagIfAbsent links artist to tag unless the pair exists and reports whether a link was created.
	AddArtistTagIfAbsent(ctx context.Context, artist *Artist, tag *Tag) (bool, error)

	// AddAlbumIfAbsent creates album under artist unless the artist already has an album with the
	// exact same title and reports whether it was created.
	AddAlbumIfAbsent(ctx context.Context, artist *Artist, album *Album) (bool, error)

	Commit() error
	Rollback() error
}

// record holds the identity and timestamp fields shared by persistent entities.
type record struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
}

func newRecord(sequence int) record {
	now := time.Now().UTC()
	return record{sequence: sequence, createdAt: now, updatedAt: now}
}

func (r *record) ID() string               { return r.id }
func (r *record) Sequence() int            { return r.sequence }
func (r *record) CreatedAt() time.Time     { return r.createdAt }
func (r *record) UpdatedAt() time.Time     { return r.updatedAt }
func (r *record) SetID(id string)          { r.id = id }
func (r *record) SetSequence(seq int)      { r.sequence = seq }
func (r *record) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *record) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// checkRequired rejects blank values and values longer than limit runes.
func checkRequired(field, value string, limit int) error {
	if shared.IsBlank(value) {
		return fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, field)
	}
	return checkOptional(field, value, limit)
}

// checkOptional rejects values longer than limit runes.
func checkOptional(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%w: %s exceeds %d characters (got %d)", shared.ErrInvalidInput, field, limit, n)
	}
	return nil
}
