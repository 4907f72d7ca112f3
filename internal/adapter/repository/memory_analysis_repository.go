package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

// MemoryAnalysisRepository keeps records in process memory. Used when no
// database is configured and in tests.
type MemoryAnalysisRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]entities.AnalysisRecord
}

// NewMemoryAnalysisRepository creates an empty in-memory repository
func NewMemoryAnalysisRepository() *MemoryAnalysisRepository {
	return &MemoryAnalysisRepository{
		records: make(map[uuid.UUID]entities.AnalysisRecord),
	}
}

// Create stores a copy of the record
func (r *MemoryAnalysisRepository) Create(_ context.Context, record *entities.AnalysisRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return errors.New("record already exists")
	}
	r.records[record.ID] = *record
	return nil
}

// GetByID returns nil, nil when the record is unknown
func (r *MemoryAnalysisRepository) GetByID(_ context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// ListRecent returns the newest records first
func (r *MemoryAnalysisRepository) ListRecent(_ context.Context, limit int) ([]entities.AnalysisRecord, error) {
	r.mu.RLock()
	records := make([]entities.AnalysisRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	limit = clampLimit(limit)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
