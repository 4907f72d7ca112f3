package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// AnalysisRepository handles analysis record persistence in PostgreSQL
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts a new analysis record
func (r *AnalysisRepository) Create(ctx context.Context, record *entities.AnalysisRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID retrieves an analysis record by ID
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	var record entities.AnalysisRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListRecent returns the newest records first
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]entities.AnalysisRecord, error) {
	var records []entities.AnalysisRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
