package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
)

// AlbumRepository persists [models.Album] records.
type AlbumRepository struct {
	db DBTX
}

// NewAlbumRepository creates a new [AlbumRepository] on the given connection or transaction
func NewAlbumRepository(db DBTX) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = `id, sequence, artist_id, title, mbid, url, image_url, created_at, updated_at`

// CreateIfAbsent inserts album unless its artist already has an album with the exact same title.
//
// The existence check and insert are a single statement. Returns true when a row was written;
// an existing album is left untouched, so its metadata is never overwritten.
func (r *AlbumRepository) CreateIfAbsent(ctx context.Context, album *models.Album) (bool, error) {
	if album.ArtistID() == "" {
		return false, fmt.Errorf("%w: album %q has no artist", shared.ErrInvalidInput, album.Title())
	}
	if err := album.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "albums")
	if err != nil {
		return false, fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO albums (id, sequence, artist_id, title, mbid, url, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (artist_id, title) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		id,
		sequence,
		album.ArtistID(),
		album.Title(),
		nullable(album.MBID()),
		nullable(album.URL()),
		nullable(album.ImageURL()),
		album.CreatedAt(),
		album.UpdatedAt(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert album %q: %w", album.Title(), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	album.SetID(id)
	album.SetSequence(sequence)
	return true, nil
}

// ListByArtist retrieves an artist's albums in creation order
func (r *AlbumRepository) ListByArtist(ctx context.Context, artistID string) ([]*models.Album, error) {
	return r.list(ctx, `SELECT `+albumColumns+` FROM albums WHERE artist_id = ? ORDER BY sequence ASC`, artistID)
}

// List retrieves all albums in creation order
func (r *AlbumRepository) List(ctx context.Context) ([]*models.Album, error) {
	return r.list(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY sequence ASC`)
}

func (r *AlbumRepository) list(ctx context.Context, query string, args ...any) ([]*models.Album, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		album, err := scanAlbum(rows, "")
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// scanAlbum scans a single row into a [models.Album]; key names the lookup in not-found errors
func scanAlbum(row scanner, key string) (*models.Album, error) {
	var (
		id        string
		sequence  int
		artistID  string
		title     string
		mbid      sql.NullString
		url       sql.NullString
		imageURL  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &artistID, &title, &mbid, &url, &imageURL, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album %q: %w", key, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	album := models.NewAlbum(sequence, artistID, title, mbid.String, url.String, imageURL.String)
	album.SetID(id)
	album.SetCreatedAt(createdAt)
	album.SetUpdatedAt(updatedAt)
	return album, nil
}
