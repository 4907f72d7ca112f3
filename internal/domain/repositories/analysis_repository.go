package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

// AnalysisRepository persists analysis records.
type AnalysisRepository interface {
	Create(ctx context.Context, record *entities.AnalysisRecord) error
	// GetByID returns nil, nil when the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error)
	ListRecent(ctx context.Context, limit int) ([]entities.AnalysisRecord, error)
}
