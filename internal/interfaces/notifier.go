package interfaces

import (
	"context"

	"solifin/internal/models"
)

// ModerationNotifier tells an owner that a publication was approved or
// rejected.
type ModerationNotifier interface {
	PublicationModerated(ctx context.Context, p *models.Publication) error
}
