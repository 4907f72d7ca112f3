package handler

import (
	"context"
	stdErrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/errors"
	"github.com/Aanishnithin07/PresenceAI/internal/adapter/dto"
	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/internal/usecase/analysis"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

const (
	videoFormField   = "video"
	defaultListLimit = 20
	videoURLExpiry   = 15 * time.Minute
)

// AnalysisService is the part of *analysis.Service the controller needs
type AnalysisService interface {
	AnalyzeUpload(ctx context.Context, upload analysis.Upload) (*analysis.Report, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, limit int) ([]entities.AnalysisRecord, error)
}

// VideoURLSigner issues temporary download links for archived videos
type VideoURLSigner interface {
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// AnalysisController serves interview analysis endpoints
type AnalysisController struct {
	service        AnalysisService
	signer         VideoURLSigner
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAnalysisController creates a new analysis controller. signer may be nil.
func NewAnalysisController(service AnalysisService, signer VideoURLSigner, maxUploadBytes int64, logger *zap.Logger) *AnalysisController {
	return &AnalysisController{
		service:        service,
		signer:         signer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// AnalyzeInterview handles POST /api/analyze-interview/
// The body is the bare result JSON. A degraded analysis is still a 200.
func (h *AnalysisController) AnalyzeInterview(c echo.Context) error {
	fh, err := c.FormFile(videoFormField)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrMissingVideo())
	}

	if ext, err := analysis.ValidateUpload(fh.Filename, fh.Size, h.maxUploadBytes); err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrUnsupportedVideoType) {
			return HandleError(h.logger, c, errors.ErrUnsupportedVideoType(ext))
		}
		return HandleError(h.logger, c, toAppError(err, h.maxUploadBytes))
	}

	file, err := fh.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer file.Close()

	report, err := h.service.AnalyzeUpload(c.Request().Context(), analysis.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  file,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, h.maxUploadBytes))
	}

	if h.logger != nil {
		h.logger.Info("✅ Interview analyzed",
			zap.String("request_id", getRequestID(c)),
			zap.String("analysis_id", report.ID.String()),
			zap.String("status", string(report.Outcome.Status)),
		)
	}

	return c.JSON(http.StatusOK, dto.NewAnalysisResponse(report.ID, report.Outcome))
}

// GetAnalysis handles GET /api/analyses/:id
func (h *AnalysisController) GetAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("analysis id must be a UUID"))
	}

	record, err := h.service.GetAnalysis(ctx, id)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrAnalysisNotFound) {
			return HandleError(h.logger, c, errors.ErrAnalysisNotFound(id.String()))
		}
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("get_analysis", err))
	}

	resp, err := dto.NewAnalysisRecordResponse(record)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	resp.VideoURL = h.videoURL(ctx, record)

	return HandleSuccess(h.logger, c, resp)
}

// ListAnalyses handles GET /api/analyses
func (h *AnalysisController) ListAnalyses(c echo.Context) error {
	var req dto.ListAnalysesRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("limit must be between 1 and 100"))
	}
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}

	records, err := h.service.ListAnalyses(c.Request().Context(), req.Limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list_analyses", err))
	}

	items := make([]dto.AnalysisRecordResponse, 0, len(records))
	for i := range records {
		item, err := dto.NewAnalysisRecordResponse(&records[i])
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInternal(err))
		}
		items = append(items, item)
	}

	return HandleSuccess(h.logger, c, items)
}

func (h *AnalysisController) videoURL(ctx context.Context, record *entities.AnalysisRecord) string {
	if h.signer == nil || record.ObjectKey == nil {
		return ""
	}
	url, err := h.signer.GetFileURL(ctx, *record.ObjectKey, videoURLExpiry)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("⚠️ Failed to sign video URL",
				zap.String("analysis_id", record.ID.String()),
				zap.Error(err),
			)
		}
		return ""
	}
	return url
}
