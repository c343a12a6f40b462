package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	"PredTrack/pkg/logger"
)

// HorizonSpec binds a horizon class to its lead time and forecast topic.
type HorizonSpec struct {
	Class    models.HorizonClass
	Duration time.Duration
	TopicID  string
}

// IngestJob fetches the latest inference for each configured horizon and
// persists it as an unscored prediction. A horizon that already has a row for
// the computed maturity time is a dedup no-op counted as success; failures on
// one horizon never abort the others.
type IngestJob struct {
	forecasts repository.ForecastSource
	store     repository.PredictionStore
	metrics   repository.Metrics
	horizons  []HorizonSpec
	log       *logger.Logger
}

// NewIngestJob creates the ingestion job.
func NewIngestJob(
	forecasts repository.ForecastSource,
	store repository.PredictionStore,
	metrics repository.Metrics,
	horizons []HorizonSpec,
	log *logger.Logger,
) *IngestJob {
	return &IngestJob{
		forecasts: forecasts,
		store:     store,
		metrics:   metrics,
		horizons:  horizons,
		log:       log.With("ingest_job"),
	}
}

// Run executes one ingestion pass. now is the single time snapshot shared by
// every horizon in the run, so maturity times stay consistent regardless of
// how long each fetch takes.
func (j *IngestJob) Run(ctx context.Context, now time.Time) *models.JobReport {
	started := time.Now()
	report := models.NewJobReport("ingestion", now)

	for _, h := range j.horizons {
		j.ingestHorizon(ctx, now, h, report)
	}

	j.metrics.RecordLatency("ingestion", time.Since(started).Seconds())
	j.log.Info("ingestion run finished",
		logger.String("outcome", string(report.Outcome())),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed))
	return report
}

func (j *IngestJob) ingestHorizon(ctx context.Context, now time.Time, h HorizonSpec, report *models.JobReport) {
	key := string(h.Class)

	inf, err := j.forecasts.LatestInference(ctx, h.TopicID)
	if err != nil {
		j.metrics.RecordFailure("ingestion", "fetch")
		j.log.Error("inference fetch failed", logger.String("horizon", key), logger.Error(err))
		report.Failure(key, fmt.Sprintf("fetch inference: %v", err))
		return
	}

	maturity := now.Add(h.Duration).Truncate(time.Second)

	latest, err := j.store.FindLatestByHorizon(ctx, h.Class)
	if err != nil {
		j.metrics.RecordFailure("ingestion", "store")
		report.Failure(key, fmt.Sprintf("latest lookup: %v", err))
		return
	}
	if latest != nil && latest.MaturityTime.Equal(maturity) {
		j.metrics.RecordDeduped(key)
		report.Success(key, models.ItemDeduped, "prediction already exists for maturity")
		return
	}

	p := &models.Prediction{
		ID:               uuid.NewString(),
		HorizonClass:     h.Class,
		PredictedValue:   inf.PointEstimate,
		ConfidenceLower:  inf.ConfidenceLower,
		ConfidenceUpper:  inf.ConfidenceUpper,
		MaturityTime:     maturity,
		RawSourcePayload: inf.RawPayload,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := j.store.Insert(ctx, p); err != nil {
		// The unique constraint is the dedup backstop for rows created
		// between the lookup and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			j.metrics.RecordDeduped(key)
			report.Success(key, models.ItemDeduped, "prediction already exists for maturity")
			return
		}
		j.metrics.RecordFailure("ingestion", "store")
		j.log.Error("prediction insert failed", logger.String("horizon", key), logger.Error(err))
		report.Failure(key, fmt.Sprintf("insert: %v", err))
		return
	}

	j.metrics.RecordIngested(key)
	j.log.Info("prediction ingested",
		logger.String("horizon", key),
		logger.String("predicted", inf.PointEstimate),
		logger.Time("maturity", maturity))
	report.Success(key, models.ItemCreated, "")
}
