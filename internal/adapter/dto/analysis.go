package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

// AnalysisResponse is the body of POST /api/analyze-interview/. The five
// result fields stay at the top level. The failure reason of degraded runs
// goes to logs, error reporting and the stored record only.
type AnalysisResponse struct {
	entities.AnalysisResult
	AnalysisID  uuid.UUID              `json:"analysis_id"`
	Status      entities.OutcomeStatus `json:"status"`
	FailedStage entities.Stage         `json:"failed_stage,omitempty"`
}

// NewAnalysisResponse builds the response for one pipeline outcome
func NewAnalysisResponse(id uuid.UUID, outcome entities.Outcome) AnalysisResponse {
	resp := AnalysisResponse{
		AnalysisResult: outcome.Result,
		AnalysisID:     id,
		Status:         outcome.Status,
	}
	if outcome.Degraded() {
		resp.FailedStage = outcome.FailedStage
	}
	return resp
}

// AnalysisRecordResponse is a stored analysis as returned by GET /api/analyses
type AnalysisRecordResponse struct {
	ID             uuid.UUID               `json:"id"`
	Status         entities.OutcomeStatus  `json:"status"`
	FailedStage    *string                 `json:"failed_stage,omitempty"`
	SourceFilename string                  `json:"source_filename"`
	Result         entities.AnalysisResult `json:"result"`
	DurationMs     int64                   `json:"duration_ms"`
	VideoURL       string                  `json:"video_url,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// NewAnalysisRecordResponse converts a stored record
func NewAnalysisRecordResponse(record *entities.AnalysisRecord) (AnalysisRecordResponse, error) {
	result, err := record.AnalysisResult()
	if err != nil {
		return AnalysisRecordResponse{}, err
	}
	return AnalysisRecordResponse{
		ID:             record.ID,
		Status:         record.Status,
		FailedStage:    record.FailedStage,
		SourceFilename: record.SourceFilename,
		Result:         result,
		DurationMs:     record.DurationMs,
		CreatedAt:      record.CreatedAt,
	}, nil
}

// ListAnalysesRequest holds the query of GET /api/analyses
type ListAnalysesRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
