package interfaces

import (
	"context"

	"solifin/internal/models"
)

// PublicationFilter defines the filter criteria for listing publications.
// Empty fields do not filter.
type PublicationFilter struct {
	Type    models.PublicationType
	OwnerID string
	Status  models.ApprovalStatus
	State   models.AvailabilityState
	Search  string
	Limit   int
	Offset  int
}

// PublicationRepository defines the interface for publication data
// operations. Lookups of a missing publication return sql.ErrNoRows.
type PublicationRepository interface {
	Create(ctx context.Context, p *models.Publication) error
	GetByID(ctx context.Context, t models.PublicationType, id string) (*models.Publication, error)
	List(ctx context.Context, filter PublicationFilter) ([]models.Publication, error)
	Count(ctx context.Context, filter PublicationFilter) (int, error)
	Update(ctx context.Context, p *models.Publication) error
	Delete(ctx context.Context, t models.PublicationType, id string) error
}

// PageRepository stores the owner's page metadata.
type PageRepository interface {
	GetOrCreateByOwner(ctx context.Context, ownerID string) (*models.Page, error)
}
