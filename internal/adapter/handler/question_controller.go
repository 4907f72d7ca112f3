package handler

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/errors"
	"github.com/Aanishnithin07/PresenceAI/internal/usecase/questions"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// HeaderQuestionSource tells clients whether questions were generated,
// cached or taken from the fallback bank
const HeaderQuestionSource = "X-Questions-Source"

// QuestionService is the part of *questions.Service the controller needs
type QuestionService interface {
	Questions(ctx context.Context, role string) ([]string, questions.Source, error)
}

// QuestionController serves interview question endpoints
type QuestionController struct {
	service QuestionService
	logger  *zap.Logger
}

// NewQuestionController creates a new question controller
func NewQuestionController(service QuestionService, logger *zap.Logger) *QuestionController {
	return &QuestionController{
		service: service,
		logger:  logger,
	}
}

// GetQuestions handles GET /api/get-questions/:job_role and returns a bare
// JSON array of strings
func (h *QuestionController) GetQuestions(c echo.Context) error {
	role := c.Param("job_role")
	if unescaped, err := url.PathUnescape(role); err == nil {
		role = unescaped
	}

	list, source, err := h.service.Questions(c.Request().Context(), role)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrInvalidJobRole) {
			appErr := errors.ErrInvalidJobRole(role)
			appErr.Raw = err
			return HandleError(h.logger, c, appErr)
		}
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	if h.logger != nil {
		h.logger.Info("questions served",
			zap.String("request_id", getRequestID(c)),
			zap.String("job_role", role),
			zap.String("source", string(source)),
		)
	}

	c.Response().Header().Set(HeaderQuestionSource, string(source))
	return c.JSON(http.StatusOK, list)
}
