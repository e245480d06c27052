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

// ArtistRepository persists [models.Artist] records.
type ArtistRepository struct {
	db DBTX
}

// NewArtistRepository creates a new [ArtistRepository] on the given connection or transaction
func NewArtistRepository(db DBTX) *ArtistRepository {
	return &ArtistRepository{db: db}
}

const artistColumns = `id, sequence, name, mbid, url, created_at, updated_at`

// Create inserts a new artist with generated ID and sequence.
//
// A name that already exists fails with [shared.ErrAlreadyExists].
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "artists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO artists (id, sequence, name, mbid, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		artist.Name(),
		nullable(artist.MBID()),
		nullable(artist.URL()),
		artist.CreatedAt(),
		artist.UpdatedAt(),
	)
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: artist %q: %w", shared.ErrAlreadyExists, artist.Name(), err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert artist %q: %w", artist.Name(), err)
	}

	artist.SetID(id)
	artist.SetSequence(sequence)
	return nil
}

// Get retrieves an artist by ID
func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	return scanArtist(row, id)
}

// GetByName retrieves an artist by exact, case-sensitive name
func (r *ArtistRepository) GetByName(ctx context.Context, name string) (*models.Artist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE name = ?`, name)
	return scanArtist(row, name)
}

// List retrieves all artists matching the given criteria in creation order.
//
// Supported criteria: "tag" (string) restricts the result to artists linked to that tag name.
func (r *ArtistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists a WHERE 1 = 1`
	args := []any{}

	if tag, ok := criteria["tag"].(string); ok && tag != "" {
		query += `
			AND EXISTS (
				SELECT 1 FROM artist_tags at
				JOIN tags t ON t.id = at.tag_id
				WHERE at.artist_id = a.id AND t.name = ?
			)`
		args = append(args, tag)
	}

	query += " ORDER BY a.sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		artist, err := scanArtist(rows, "")
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// scanArtist scans a single row into a [models.Artist]; key names the lookup in not-found errors
func scanArtist(row scanner, key string) (*models.Artist, error) {
	var (
		id        string
		sequence  int
		name      string
		mbid      sql.NullString
		url       sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &name, &mbid, &url, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artist %q: %w", key, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	artist := models.NewArtist(sequence, name, mbid.String, url.String)
	artist.SetID(id)
	artist.SetCreatedAt(createdAt)
	artist.SetUpdatedAt(updatedAt)
	return artist, nil
}
