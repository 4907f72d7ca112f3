package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/errors"
	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                *config.Config
	analysisController *AnalysisController
	questionController *QuestionController
	auth               echo.MiddlewareFunc
	metrics            http.Handler
	logger             *zap.Logger
}

// NewRouter creates a new router with all handlers. auth and metrics may be nil.
func NewRouter(
	cfg *config.Config,
	analysisController *AnalysisController,
	questionController *QuestionController,
	auth echo.MiddlewareFunc,
	metrics http.Handler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:                cfg,
		analysisController: analysisController,
		questionController: questionController,
		auth:               auth,
		metrics:            metrics,
		logger:             logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.HTTPErrorHandler = rt.errorHandler(e.DefaultHTTPErrorHandler)

	e.GET("/health", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics))
	}

	api := e.Group("/api")
	if rt.auth != nil {
		api.Use(rt.auth)
	}

	rt.setupAnalysisRoutes(api)
	rt.setupQuestionRoutes(api)
}

// setupAnalysisRoutes configures interview analysis routes
func (rt *Router) setupAnalysisRoutes(g *echo.Group) {
	if rt.analysisController == nil {
		g.POST("/analyze-interview/", rt.notImplemented)
		return
	}
	g.POST("/analyze-interview/", rt.analysisController.AnalyzeInterview)
	g.POST("/analyze-interview", rt.analysisController.AnalyzeInterview)
	g.GET("/analyses", rt.analysisController.ListAnalyses)
	g.GET("/analyses/:id", rt.analysisController.GetAnalysis)
}

// setupQuestionRoutes configures question generation routes
func (rt *Router) setupQuestionRoutes(g *echo.Group) {
	if rt.questionController == nil {
		g.GET("/get-questions/:job_role", rt.notImplemented)
		return
	}
	g.GET("/get-questions/:job_role", rt.questionController.GetQuestions)
}

// errorHandler renders AppError values returned by middleware in the standard
// envelope and leaves every other error to fallback.
func (rt *Router) errorHandler(fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var appErr errors.AppError
		if c.Response().Committed || !stdErrors.As(err, &appErr) {
			fallback(err, c)
			return
		}
		if herr := HandleError(rt.logger, c, appErr); herr != nil {
			fallback(herr, c)
		}
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
