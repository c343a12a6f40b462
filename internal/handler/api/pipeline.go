package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	"PredTrack/internal/usecase"
	xhttp "PredTrack/pkg/http"
	"PredTrack/pkg/http/middleware"
	xlogger "PredTrack/pkg/logger"
)

// PipelineHandler exposes the job trigger and metrics endpoints over Echo.
type PipelineHandler struct {
	logger      *xlogger.Logger
	ingest      *usecase.IngestJob
	score       *usecase.ScoreJob
	agg         *usecase.MetricsAggregator
	store       repository.PredictionStore
	token       string
	environment string
}

func NewPipelineHandler(
	logger *xlogger.Logger,
	ingest *usecase.IngestJob,
	score *usecase.ScoreJob,
	agg *usecase.MetricsAggregator,
	store repository.PredictionStore,
	token string,
	environment string,
) *PipelineHandler {
	return &PipelineHandler{
		logger:      logger,
		ingest:      ingest,
		score:       score,
		agg:         agg,
		store:       store,
		token:       token,
		environment: environment,
	}
}

func (h *PipelineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	jobs := g.Group("/jobs", middleware.BearerAuth(h.token))
	jobs.POST("/ingestion", h.TriggerIngestion)
	jobs.POST("/scoring", h.TriggerScoring)

	g.GET("/metrics/accuracy", h.AccuracyMetrics)
	g.GET("/health", h.Health)

	if h.environment == "development" {
		g.POST("/dev/purge", h.Purge, middleware.BearerAuth(h.token))
	}
}

// triggerResponse is the body of both job trigger endpoints.
type triggerResponse struct {
	Outcome models.Outcome `json:"outcome"`
	*models.JobReport
}

// TriggerIngestion runs one ingestion pass over all configured horizons.
func (h *PipelineHandler) TriggerIngestion(c echo.Context) error {
	now := time.Now().UTC()
	report := h.ingest.Run(c.Request().Context(), now)
	return h.reportResponse(c, report)
}

// TriggerScoring scores every mature unscored prediction.
func (h *PipelineHandler) TriggerScoring(c echo.Context) error {
	now := time.Now().UTC()
	report := h.score.Run(c.Request().Context(), now)
	return h.reportResponse(c, report)
}

func (h *PipelineHandler) reportResponse(c echo.Context, report *models.JobReport) error {
	body := triggerResponse{Outcome: report.Outcome(), JobReport: report}
	switch report.Outcome() {
	case models.OutcomeSuccess:
		return xhttp.SuccessResponse(c, body)
	case models.OutcomePartial:
		h.logger.Warn("job finished partially",
			xlogger.String("job", report.Job),
			xlogger.Int("failed", report.Failed))
		return xhttp.MultiStatusResponse(c, body)
	default:
		h.logger.Error("job failed",
			xlogger.String("job", report.Job),
			xlogger.Int("failed", report.Failed))
		return xhttp.InternalServerErrorResponse(c, body)
	}
}

// AccuracyMetrics returns rolling KPIs and the daily accuracy trend.
func (h *PipelineHandler) AccuracyMetrics(c echo.Context) error {
	req := &models.MetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.Compute(c.Request().Context(), time.Now().UTC(), req.Days)
	if err != nil {
		h.logger.Error("metrics aggregation error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, echo.Map{"error": "metrics aggregation failed"})
	}
	return xhttp.SuccessResponse(c, res)
}

// Health reports process liveness and store reachability.
func (h *PipelineHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.ServiceUnavailableResponse(c, echo.Map{"status": "degraded", "store": err.Error()})
	}
	return xhttp.SuccessResponse(c, echo.Map{"status": "ok"})
}

// Purge deletes all predictions. Registered only in development.
func (h *PipelineHandler) Purge(c echo.Context) error {
	n, err := h.store.Purge(c.Request().Context())
	if err != nil {
		h.logger.Error("purge failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, echo.Map{"error": "purge failed"})
	}
	h.logger.Warn("predictions purged", xlogger.Int64("deleted", n))
	return xhttp.SuccessResponse(c, echo.Map{"deleted": n})
}
