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

// TagRepository persists [models.Tag] records.
type TagRepository struct {
	db DBTX
}

// NewTagRepository creates a new [TagRepository] on the given connection or transaction
func NewTagRepository(db DBTX) *TagRepository {
	return &TagRepository{db: db}
}

const tagColumns = `id, sequence, name, created_at, updated_at`

// Create inserts a new tag with generated ID and sequence
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "tags")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tags (id, sequence, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, sequence, tag.Name(), tag.CreatedAt(), tag.UpdatedAt(),
	)
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: tag %q: %w", shared.ErrAlreadyExists, tag.Name(), err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert tag %q: %w", tag.Name(), err)
	}

	tag.SetID(id)
	tag.SetSequence(sequence)
	return nil
}

// GetByName retrieves a tag by exact name
func (r *TagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)
	return scanTag(row, name)
}

// ListForArtist retrieves the tags linked to an artist in tag creation order
func (r *TagRepository) ListForArtist(ctx context.Context, artistID string) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.sequence, t.name, t.created_at, t.updated_at
		FROM tags t
		JOIN artist_tags at ON at.tag_id = t.id
		WHERE at.artist_id = ?
		ORDER BY t.sequence ASC
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag, err := scanTag(rows, "")
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}

// List retrieves all tags with the number of artists linked to each
func (r *TagRepository) List(ctx context.Context) ([]models.TagSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(at.artist_id)
		FROM tags t
		LEFT JOIN artist_tags at ON at.tag_id = t.id
		GROUP BY t.id, t.name, t.sequence
		ORDER BY t.sequence ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []models.TagSummary{}
	for rows.Next() {
		var summary models.TagSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.ArtistCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTag scans a single row into a [models.Tag]; key names the lookup in not-found errors
func scanTag(row scanner, key string) (*models.Tag, error) {
	var (
		id        string
		sequence  int
		name      string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %q: %w", key, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tag: %w", err)
	}

	tag := models.NewTag(sequence, name)
	tag.SetID(id)
	tag.SetCreatedAt(createdAt)
	tag.SetUpdatedAt(updatedAt)
	return tag, nil
}
