package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisRecord is the persisted form of one analysis request.
type AnalysisRecord struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	Status         OutcomeStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	FailedStage    *string       `json:"failed_stage,omitempty" gorm:"type:varchar(50)"`
	DegradedReason *string       `json:"degraded_reason,omitempty" gorm:"type:text"`
	SourceFilename string        `json:"source_filename" gorm:"type:varchar(255);not null"`
	ObjectKey      *string       `json:"object_key,omitempty" gorm:"type:varchar(512)"`

	FillerWordCount      int       `json:"filler_word_count" gorm:"type:integer;not null"`
	SpeakingPace         int       `json:"speaking_pace" gorm:"type:integer;not null"`
	EyeContactPercentage float64   `json:"eye_contact_percentage" gorm:"type:double precision;not null"`
	Sentiment            Sentiment `json:"sentiment" gorm:"type:varchar(50);not null"`

	// Result holds the full AnalysisResult, transcript included.
	Result     datatypes.JSON `json:"result" gorm:"type:jsonb"`
	DurationMs int64          `json:"duration_ms" gorm:"type:bigint"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewAnalysisRecord builds a record from a pipeline outcome.
func NewAnalysisRecord(id uuid.UUID, filename string, outcome Outcome, elapsed time.Duration) (*AnalysisRecord, error) {
	payload, err := json.Marshal(outcome.Result)
	if err != nil {
		return nil, err
	}

	rec := &AnalysisRecord{
		ID:                   id,
		Status:               outcome.Status,
		SourceFilename:       filename,
		FillerWordCount:      outcome.Result.FillerWordCount,
		SpeakingPace:         outcome.Result.SpeakingPace,
		EyeContactPercentage: outcome.Result.EyeContactPercentage,
		Sentiment:            outcome.Result.Sentiment,
		Result:               datatypes.JSON(payload),
		DurationMs:           elapsed.Milliseconds(),
		CreatedAt:            time.Now().UTC(),
	}

	if outcome.Degraded() {
		stage := string(outcome.FailedStage)
		reason := outcome.Reason()
		rec.FailedStage = &stage
		rec.DegradedReason = &reason
	}

	return rec, nil
}

// SetObjectKey records where the source video was archived.
func (r *AnalysisRecord) SetObjectKey(key string) {
	r.ObjectKey = &key
}

// AnalysisResult decodes the stored result payload.
func (r *AnalysisRecord) AnalysisResult() (AnalysisResult, error) {
	var result AnalysisResult
	if len(r.Result) == 0 {
		return result, nil
	}
	err := json.Unmarshal(r.Result, &result)
	return result, err
}

// TableName specifies the table name for GORM
func (AnalysisRecord) TableName() string {
	return "analyses"
}
