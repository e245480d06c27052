package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/lfx/internal/models"
)

// ArtistTagRepository persists [models.ArtistTag] links.
type ArtistTagRepository struct {
	db DBTX
}

// NewArtistTagRepository creates a new [ArtistTagRepository] on the given connection or transaction
func NewArtistTagRepository(db DBTX) *ArtistTagRepository {
	return &ArtistTagRepository{db: db}
}

// CreateIfAbsent inserts the link unless the (artist, tag) pair exists and reports whether a row was written.
func (r *ArtistTagRepository) CreateIfAbsent(ctx context.Context, link *models.ArtistTag) (bool, error) {
	if err := link.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO artist_tags (artist_id, tag_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (artist_id, tag_id) DO NOTHING
	`, link.ArtistID, link.TagID, link.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert artist tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// TagNamesByArtist maps artist IDs to their tag names in tag creation order.
func (r *ArtistTagRepository) TagNamesByArtist(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT at.artist_id, t.name
		FROM artist_tags at
		JOIN tags t ON t.id = at.tag_id
		ORDER BY t.sequence ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist tags: %w", err)
	}
	defer rows.Close()

	names := make(map[string][]string)
	for rows.Next() {
		var artistID, name string
		if err := rows.Scan(&artistID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan artist tag: %w", err)
		}
		names[artistID] = append(names[artistID], name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return names, nil
}
