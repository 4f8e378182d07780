package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"solifin/internal/interfaces"
	"solifin/internal/models"
)

type pageRepository struct {
	db *sql.DB
}

func NewPageRepository(db *sql.DB) interfaces.PageRepository {
	return &pageRepository{db: db}
}

// GetOrCreateByOwner returns the owner's page, creating an empty one on
// first access.
func (r *pageRepository) GetOrCreateByOwner(ctx context.Context, ownerID string) (*models.Page, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pages (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New().String(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure page: %w", err)
	}

	var (
		page  models.Page
		cover sql.NullString
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT id, user_id, nombre_abonnes, nombre_likes, photo_de_couverture, created_at
		FROM pages
		WHERE user_id = $1
	`, ownerID).Scan(&page.ID, &page.OwnerID, &page.Subscribers, &page.Likes, &cover, &page.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	page.CoverPhoto = cover.String
	return &page, nil
}
