package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	"PredTrack/internal/service/scoring"
	"PredTrack/pkg/logger"
)

// ScoreJob finds mature unscored predictions, fetches ground truth for each
// maturity instant and writes the accuracy score back. Row failures are
// recorded and never block the rest of the batch; an invocation killed
// mid-batch is safe because unscored rows are simply picked up next run.
type ScoreJob struct {
	store     repository.PredictionStore
	truth     repository.TruthSource
	publisher repository.ScoredPublisher // optional, may be nil
	metrics   repository.Metrics
	log       *logger.Logger
}

// NewScoreJob creates the scoring job. publisher may be nil when event
// publishing is disabled.
func NewScoreJob(
	store repository.PredictionStore,
	truth repository.TruthSource,
	publisher repository.ScoredPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *ScoreJob {
	return &ScoreJob{
		store:     store,
		truth:     truth,
		publisher: publisher,
		metrics:   metrics,
		log:       log.With("score_job"),
	}
}

// Run executes one scoring pass against the shared time snapshot now.
func (j *ScoreJob) Run(ctx context.Context, now time.Time) *models.JobReport {
	started := time.Now()
	report := models.NewJobReport("scoring", now)

	rows, err := j.store.FindMatureUnscored(ctx, now)
	if err != nil {
		j.metrics.RecordFailure("scoring", "store")
		j.log.Error("mature unscored lookup failed", logger.Error(err))
		report.Failure("find_mature_unscored", err.Error())
		return report
	}

	j.log.Info("scoring run started", logger.Int("candidates", len(rows)))
	for _, row := range rows {
		j.scoreRow(ctx, now, row, report)
	}

	j.metrics.RecordLatency("scoring", time.Since(started).Seconds())
	j.log.Info("scoring run finished",
		logger.String("outcome", string(report.Outcome())),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed))
	return report
}

func (j *ScoreJob) scoreRow(ctx context.Context, now time.Time, row *models.Prediction, report *models.JobReport) {
	// Guard against upstream clock or query errors: never ask the truth
	// source for a future instant.
	if row.MaturityTime.After(now) {
		j.metrics.RecordFailure("scoring", "future_maturity")
		j.log.Warn("candidate row matures in the future, skipping",
			logger.String("id", row.ID), logger.Time("maturity", row.MaturityTime))
		report.Failure(row.ID, fmt.Sprintf("maturity %s is in the future", row.MaturityTime.Format(time.RFC3339)))
		return
	}

	actual, err := j.truth.ValueAt(ctx, row.MaturityTime, now)
	if err != nil {
		j.metrics.RecordFailure("scoring", "ground_truth")
		j.log.Error("ground truth fetch failed", logger.String("id", row.ID), logger.Error(err))
		report.Failure(row.ID, fmt.Sprintf("ground truth: %v", err))
		return
	}

	predicted, err := strconv.ParseFloat(row.PredictedValue, 64)
	if err != nil {
		j.metrics.RecordFailure("scoring", "parse")
		j.log.Error("stored predicted value is unparsable",
			logger.String("id", row.ID), logger.String("predicted", row.PredictedValue))
		report.Failure(row.ID, fmt.Sprintf("parse predicted value %q: %v", row.PredictedValue, err))
		return
	}

	score := scoring.Score(actual, predicted)

	updated, err := j.store.UpdateScore(ctx, row.ID, actual, score)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyScored) {
			// A concurrent pass got here first; same inputs, same result.
			report.Success(row.ID, models.ItemSkipped, "already scored")
			return
		}
		j.metrics.RecordFailure("scoring", "store")
		j.log.Error("score update failed", logger.String("id", row.ID), logger.Error(err))
		report.Failure(row.ID, fmt.Sprintf("update score: %v", err))
		return
	}

	j.metrics.RecordScored(string(row.HorizonClass), score)
	j.log.Info("prediction scored",
		logger.String("id", row.ID),
		logger.String("horizon", string(row.HorizonClass)),
		logger.Float64("actual", actual),
		logger.Float64("score", score))
	report.Success(row.ID, models.ItemScored, "")

	if j.publisher != nil {
		if err := j.publisher.PublishScored(ctx, updated); err != nil {
			// Event publishing is best-effort; the row is already scored.
			j.log.Warn("scored event publish failed", logger.String("id", row.ID), logger.Error(err))
		}
	}
}
