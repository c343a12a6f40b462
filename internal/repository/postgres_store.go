package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
)

// PostgresStore implements the PredictionStore boundary on Postgres. The
// unscored->scored transition relies on a single UPDATE setting actual_value
// and accuracy_score together; row-level atomicity comes from the engine.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed prediction store.
func NewPostgresStore(db *sql.DB) repository.PredictionStore {
	return &PostgresStore{db: db}
}

// Schema returns the idempotent DDL for the predictions table: a unique
// (horizon_class, maturity_time) pair backs ingestion dedup, the partial
// index on maturity_time serves mature-unscored scans, and the composite
// (horizon_class, created_at) index serves latest-lookups.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id UUID PRIMARY KEY,
			horizon_class TEXT NOT NULL,
			predicted_value NUMERIC(30,2) NOT NULL,
			confidence_lower NUMERIC(30,2),
			confidence_upper NUMERIC(30,2),
			maturity_time TIMESTAMPTZ NOT NULL,
			actual_value NUMERIC(30,8),
			accuracy_score NUMERIC(5,2) CHECK (accuracy_score >= 0 AND accuracy_score <= 100),
			raw_source_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (horizon_class, maturity_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_unscored
			ON predictions (maturity_time) WHERE accuracy_score IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_horizon_created
			ON predictions (horizon_class, created_at DESC)`,
	}
}

const predictionColumns = `id, horizon_class, predicted_value::text, confidence_lower::text,
	confidence_upper::text, maturity_time, actual_value, accuracy_score,
	raw_source_payload, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, p *models.Prediction) (*models.Prediction, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO predictions (
			id, horizon_class, predicted_value, confidence_lower, confidence_upper,
			maturity_time, raw_source_payload, created_at, updated_at
		) VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7, $8, $9)
		RETURNING `+predictionColumns,
		p.ID, p.HorizonClass, p.PredictedValue, p.ConfidenceLower, p.ConfidenceUpper,
		p.MaturityTime, nullableJSON(p.RawSourcePayload), p.CreatedAt, p.UpdatedAt,
	)

	inserted, err := scanPrediction(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert prediction: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) FindLatestByHorizon(ctx context.Context, h models.HorizonClass) (*models.Prediction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE horizon_class = $1
		ORDER BY created_at DESC
		LIMIT 1`, h,
	)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest by horizon: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindMatureUnscored(ctx context.Context, now time.Time) ([]*models.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE maturity_time <= $1 AND accuracy_score IS NULL
		ORDER BY maturity_time ASC`, now,
	)
	if err != nil {
		return nil, fmt.Errorf("find mature unscored: %w", err)
	}
	defer rows.Close()

	var out []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mature unscored: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateScore(ctx context.Context, id string, actual, score float64) (*models.Prediction, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE predictions
		SET actual_value = $2, accuracy_score = $3, updated_at = NOW()
		WHERE id = $1 AND accuracy_score IS NULL
		RETURNING `+predictionColumns,
		id, actual, score,
	)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAlreadyScored
		}
		return nil, fmt.Errorf("update score: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) AggregateAverage(ctx context.Context, from, to time.Time) (*float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(accuracy_score)
		FROM predictions
		WHERE accuracy_score IS NOT NULL
		  AND maturity_time >= $1 AND maturity_time < $2`,
		from, to,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("aggregate average: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (s *PostgresStore) AggregateByDay(ctx context.Context, from, to time.Time) ([]models.DayAverage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT (maturity_time AT TIME ZONE 'UTC')::date AS day, AVG(accuracy_score) AS avg
		FROM predictions
		WHERE accuracy_score IS NOT NULL
		  AND maturity_time >= $1 AND maturity_time < $2
		GROUP BY day
		ORDER BY day ASC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate by day: %w", err)
	}
	defer rows.Close()

	var out []models.DayAverage
	for rows.Next() {
		var d models.DayAverage
		if err := rows.Scan(&d.Day, &d.Avg); err != nil {
			return nil, fmt.Errorf("scan day average: %w", err)
		}
		d.Day = d.Day.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM predictions`)
	if err != nil {
		return 0, fmt.Errorf("purge predictions: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(r rowScanner) (*models.Prediction, error) {
	var (
		p       models.Prediction
		lower   sql.NullString
		upper   sql.NullString
		actual  sql.NullFloat64
		score   sql.NullFloat64
		payload []byte
	)
	if err := r.Scan(
		&p.ID, &p.HorizonClass, &p.PredictedValue, &lower, &upper,
		&p.MaturityTime, &actual, &score, &payload, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if lower.Valid {
		p.ConfidenceLower = &lower.String
	}
	if upper.Valid {
		p.ConfidenceUpper = &upper.String
	}
	if actual.Valid {
		p.ActualValue = &actual.Float64
	}
	if score.Valid {
		p.AccuracyScore = &score.Float64
	}
	if len(payload) > 0 {
		p.RawSourcePayload = json.RawMessage(payload)
	}
	p.MaturityTime = p.MaturityTime.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
