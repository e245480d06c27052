package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
)

// Catalog is the SQLite-backed [models.CatalogStore] and the source of the catalog's read projections.
type Catalog struct {
	db *sql.DB
}

// NewCatalog creates a [Catalog] over an open, migrated database.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// Begin starts a unit of work. Nothing it writes is visible to other readers until Commit.
func (c *Catalog) Begin(ctx context.Context) (models.CatalogTx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &catalogTx{
		tx:      tx,
		tags:    NewTagRepository(tx),
		artists: NewArtistRepository(tx),
		albums:  NewAlbumRepository(tx),
		links:   NewArtistTagRepository(tx),
	}, nil
}

type catalogTx struct {
	tx      *sql.Tx
	tags    *TagRepository
	artists *ArtistRepository
	albums  *AlbumRepository
	links   *ArtistTagRepository
	done    bool
}

func (t *catalogTx) FindTagByName(ctx context.Context, name string) (*models.Tag, error) {
	return t.tags.GetByName(ctx, name)
}

func (t *catalogTx) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.NewTag(0, name)
	if err := t.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (t *catalogTx) FindArtistByName(ctx context.Context, name string, withRelations bool) (*models.Artist, error) {
	artist, err := t.artists.GetByName(ctx, name)
	if err != nil || !withRelations {
		return artist, err
	}

	albums, err := t.albums.ListByArtist(ctx, artist.ID())
	if err != nil {
		return nil, err
	}
	for _, album := range albums {
		artist.AddAlbum(album)
	}

	tags, err := t.tags.ListForArtist(ctx, artist.ID())
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		artist.AddTag(tag)
	}

	return artist, nil
}

func (t *catalogTx) CreateArtist(ctx context.Context, artist *models.Artist) error {
	return t.artists.Create(ctx, artist)
}

func (t *catalogTx) AddArtistTagIfAbsent(ctx context.Context, artist *models.Artist, tag *models.Tag) (bool, error) {
	return t.links.CreateIfAbsent(ctx, models.NewArtistTag(artist, tag))
}

func (t *catalogTx) AddAlbumIfAbsent(ctx context.Context, artist *models.Artist, album *models.Album) (bool, error) {
	if artist.ID() == "" {
		return false, fmt.Errorf("%w: artist %q is not saved", shared.ErrInvalidInput, artist.Name())
	}
	album.SetArtistID(artist.ID())
	return t.albums.CreateIfAbsent(ctx, album)
}

func (t *catalogTx) Commit() error {
	if t.done {
		return shared.ErrTxDone
	}
	t.done = true

	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *catalogTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// ListArtists returns artist summaries in creation order, optionally restricted to a tag name.
func (c *Catalog) ListArtists(ctx context.Context, tag string) ([]models.ArtistSummary, error) {
	artists, err := NewArtistRepository(c.db).List(ctx, map[string]any{"tag": tag})
	if err != nil {
		return nil, err
	}

	tagNames, err := NewArtistTagRepository(c.db).TagNamesByArtist(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ArtistSummary, 0, len(artists))
	for _, artist := range artists {
		summaries = append(summaries, artistSummary(artist, tagNames[artist.ID()]))
	}
	return summaries, nil
}

// ListArtistDetails returns every artist with its tags and albums.
func (c *Catalog) ListArtistDetails(ctx context.Context) ([]models.ArtistDetail, error) {
	artists, err := NewArtistRepository(c.db).List(ctx, nil)
	if err != nil {
		return nil, err
	}

	tagNames, err := NewArtistTagRepository(c.db).TagNamesByArtist(ctx)
	if err != nil {
		return nil, err
	}

	albums, err := NewAlbumRepository(c.db).List(ctx)
	if err != nil {
		return nil, err
	}

	byArtist := make(map[string][]*models.Album)
	for _, album := range albums {
		byArtist[album.ArtistID()] = append(byArtist[album.ArtistID()], album)
	}

	details := make([]models.ArtistDetail, 0, len(artists))
	for _, artist := range artists {
		details = append(details, artistDetail(artist, tagNames[artist.ID()], byArtist[artist.ID()]))
	}
	return details, nil
}

// ArtistDetail returns one artist with its tags and albums, or an error wrapping [shared.ErrNotFound].
func (c *Catalog) ArtistDetail(ctx context.Context, id string) (*models.ArtistDetail, error) {
	artist, err := NewArtistRepository(c.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := NewTagRepository(c.db).ListForArtist(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name())
	}

	albums, err := NewAlbumRepository(c.db).ListByArtist(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := artistDetail(artist, names, albums)
	return &detail, nil
}

// ListTags returns every tag with its artist count.
func (c *Catalog) ListTags(ctx context.Context) ([]models.TagSummary, error) {
	return NewTagRepository(c.db).List(ctx)
}

// Stats counts catalog rows.
func (c *Catalog) Stats(ctx context.Context) (*models.CatalogStats, error) {
	var stats models.CatalogStats
	err := c.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM artists),
			(SELECT COUNT(*) FROM albums),
			(SELECT COUNT(*) FROM tags),
			(SELECT COUNT(*) FROM artist_tags)
	`).Scan(&stats.Artists, &stats.Albums, &stats.Tags, &stats.ArtistTags)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}
	return &stats, nil
}

func artistSummary(artist *models.Artist, tags []string) models.ArtistSummary {
	if tags == nil {
		tags = []string{}
	}
	return models.ArtistSummary{
		ID:   artist.ID(),
		Name: artist.Name(),
		URL:  artist.URL(),
		Tags: tags,
	}
}

func artistDetail(artist *models.Artist, tags []string, albums []*models.Album) models.ArtistDetail {
	summaries := make([]models.AlbumSummary, 0, len(albums))
	for _, album := range albums {
		summaries = append(summaries, models.AlbumSummary{
			ID:       album.ID(),
			Title:    album.Title(),
			URL:      album.URL(),
			ImageURL: album.ImageURL(),
		})
	}

	return models.ArtistDetail{
		ArtistSummary: artistSummary(artist, tags),
		MBID:          artist.MBID(),
		Albums:        summaries,
	}
}
