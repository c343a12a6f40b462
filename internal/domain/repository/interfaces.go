package repository

import (
	"context"
	"errors"
	"time"

	"PredTrack/internal/domain/models"
)

// ErrDuplicate is returned by Insert when a row with the same
// (horizon_class, maturity_time) already exists.
var ErrDuplicate = errors.New("prediction already exists for horizon and maturity")

// ErrAlreadyScored is returned by UpdateScore when the row is missing or its
// score was already written. Scoring is idempotent per row, so callers treat
// this as a no-op rather than a failure.
var ErrAlreadyScored = errors.New("prediction not found or already scored")

// PredictionStore is the persistence boundary for Prediction rows.
type PredictionStore interface {
	// Insert persists a new unscored prediction and returns it.
	Insert(ctx context.Context, p *models.Prediction) (*models.Prediction, error)
	// FindLatestByHorizon returns the most recently created prediction for a
	// horizon class, or nil when none exists.
	FindLatestByHorizon(ctx context.Context, h models.HorizonClass) (*models.Prediction, error)
	// FindMatureUnscored returns all rows with maturity_time <= now and no
	// accuracy score, oldest first.
	FindMatureUnscored(ctx context.Context, now time.Time) ([]*models.Prediction, error)
	// UpdateScore atomically sets actual_value and accuracy_score on an
	// unscored row and returns the updated row.
	UpdateScore(ctx context.Context, id string, actual, score float64) (*models.Prediction, error)
	// AggregateAverage returns the mean accuracy_score of scored rows whose
	// maturity_time is in [from, to), or nil when the window is empty.
	AggregateAverage(ctx context.Context, from, to time.Time) (*float64, error)
	// AggregateByDay buckets scored rows by the UTC calendar day of
	// maturity_time over [from, to) and averages accuracy_score per bucket.
	AggregateByDay(ctx context.Context, from, to time.Time) ([]models.DayAverage, error)
	// Purge deletes all rows. Development only.
	Purge(ctx context.Context) (int64, error)
	Health(ctx context.Context) error
}

// ForecastSource retrieves the latest inference for a forecast topic.
type ForecastSource interface {
	LatestInference(ctx context.Context, topicID string) (*models.Inference, error)
}

// TruthSource retrieves the realized value at a past or current instant.
// now is the job's consistent time snapshot; it decides whether the target is
// near enough to the present to use the current-value endpoint.
type TruthSource interface {
	ValueAt(ctx context.Context, target, now time.Time) (float64, error)
}

// ScoredPublisher emits an event for every successfully scored prediction.
type ScoredPublisher interface {
	PublishScored(ctx context.Context, p *models.Prediction) error
	Close() error
}

// Metrics records operational counters for the pipeline.
type Metrics interface {
	RecordIngested(horizon string)
	RecordDeduped(horizon string)
	RecordScored(horizon string, score float64)
	RecordFailure(job, reason string)
	RecordLatency(op string, seconds float64)
}
