package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/service/cache"
	"PredTrack/pkg/logger"
)

func seedScored(store *fakeStore, maturity time.Time, score float64) {
	actual := 100.0
	p := &models.Prediction{
		ID:             uuid.NewString(),
		HorizonClass:   models.HorizonShort,
		PredictedValue: "100.00",
		MaturityTime:   maturity,
		ActualValue:    &actual,
		AccuracyScore:  &score,
		CreatedAt:      maturity.Add(-time.Hour),
		UpdatedAt:      maturity,
	}
	store.rows[p.ID] = p
}

func TestComputeKPIsPerWindow(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	seedScored(store, now.Add(-time.Hour), 90)       // daily, weekly, monthly
	seedScored(store, now.Add(-3*24*time.Hour), 80)  // weekly, monthly
	seedScored(store, now.Add(-20*24*time.Hour), 70) // monthly only

	agg := NewMetricsAggregator(store, nil, 0, logger.Nop())
	got, err := agg.Compute(context.Background(), now, 30)
	require.NoError(t, err)

	require.NotNil(t, got.KPIs.Daily)
	assert.Equal(t, 90.0, *got.KPIs.Daily)
	require.NotNil(t, got.KPIs.Weekly)
	assert.Equal(t, 85.0, *got.KPIs.Weekly)
	require.NotNil(t, got.KPIs.Monthly)
	assert.Equal(t, 80.0, *got.KPIs.Monthly)
}

func TestComputeEmptyWindowIsNullNotZero(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	// Unscored row inside every window must not count.
	seedPrediction(store, models.HorizonShort, "100.00", now.Add(-time.Hour))

	agg := NewMetricsAggregator(store, nil, 0, logger.Nop())
	got, err := agg.Compute(context.Background(), now, 30)
	require.NoError(t, err)

	assert.Nil(t, got.KPIs.Daily)
	assert.Nil(t, got.KPIs.Weekly)
	assert.Nil(t, got.KPIs.Monthly)
	assert.Empty(t, got.DailyTrend)
}

func TestComputeDailyTrendOmitsEmptyDays(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	seedScored(store, now.Add(-time.Hour), 90)
	seedScored(store, now.Add(-2*time.Hour), 80)
	// Skip a day, then one more point.
	seedScored(store, now.Add(-2*24*time.Hour), 60)

	agg := NewMetricsAggregator(store, nil, 0, logger.Nop())
	got, err := agg.Compute(context.Background(), now, 30)
	require.NoError(t, err)

	require.Len(t, got.DailyTrend, 2)
	assert.Equal(t, "2026-08-24", got.DailyTrend[0].Date)
	assert.Equal(t, 60.0, got.DailyTrend[0].AvgAccuracy)
	assert.Equal(t, "2026-08-26", got.DailyTrend[1].Date)
	assert.Equal(t, 85.0, got.DailyTrend[1].AvgAccuracy)
}

func TestComputeUsesCache(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	seedScored(store, now.Add(-time.Hour), 90)

	agg := NewMetricsAggregator(store, cache.NewTTLCache(), time.Minute, logger.Nop())
	first, err := agg.Compute(context.Background(), now, 30)
	require.NoError(t, err)

	// A new scored row must not show up while the cache entry is fresh.
	seedScored(store, now.Add(-30*time.Minute), 10)
	second, err := agg.Compute(context.Background(), now, 30)
	require.NoError(t, err)

	assert.Equal(t, first.KPIs.Daily, second.KPIs.Daily)
}
