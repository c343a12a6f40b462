package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	"PredTrack/internal/service/cache"
	"PredTrack/pkg/logger"
	"PredTrack/pkg/util"
)

// KPI windows. All window math is done in UTC against maturity_time.
const (
	windowDaily   = 24 * time.Hour
	windowWeekly  = 7 * 24 * time.Hour
	windowMonthly = 30 * 24 * time.Hour
)

const defaultTrendDays = 30

// MetricsAggregator computes rolling-window accuracy KPIs and the daily trend
// series from scored predictions. Read-only; results are cached briefly.
type MetricsAggregator struct {
	store    repository.PredictionStore
	cache    cache.BytesCache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewMetricsAggregator creates the aggregator. cache may be nil to disable
// caching.
func NewMetricsAggregator(
	store repository.PredictionStore,
	bc cache.BytesCache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *MetricsAggregator {
	return &MetricsAggregator{
		store:    store,
		cache:    bc,
		cacheTTL: cacheTTL,
		log:      log.With("metrics_aggregator"),
	}
}

// Compute returns KPIs for the 24h/7d/30d windows ending at now plus the
// daily trend over the trailing trendDays calendar days. Windows with no
// scored rows yield null KPIs; days with no scored rows yield no trend point.
func (a *MetricsAggregator) Compute(ctx context.Context, now time.Time, trendDays int) (*models.AccuracyMetrics, error) {
	if trendDays <= 0 {
		trendDays = defaultTrendDays
	}
	cacheKey := fmt.Sprintf("metrics:accuracy:%d", trendDays)

	if a.cache != nil {
		if b, ok, err := a.cache.GetBytes(cacheKey); err == nil && ok {
			var cached models.AccuracyMetrics
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	out := &models.AccuracyMetrics{DailyTrend: []models.TrendPoint{}}

	windows := []struct {
		name   string
		window time.Duration
		dest   **float64
	}{
		{"daily", windowDaily, &out.KPIs.Daily},
		{"weekly", windowWeekly, &out.KPIs.Weekly},
		{"monthly", windowMonthly, &out.KPIs.Monthly},
	}
	for _, w := range windows {
		avg, err := a.store.AggregateAverage(ctx, util.WindowStart(now, w.window), now)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s window: %w", w.name, err)
		}
		if avg != nil {
			rounded := util.Round2(*avg)
			*w.dest = &rounded
		}
	}

	trendFrom := util.WindowStart(now, time.Duration(trendDays)*24*time.Hour)
	days, err := a.store.AggregateByDay(ctx, trendFrom, now)
	if err != nil {
		return nil, fmt.Errorf("aggregate daily trend: %w", err)
	}
	for _, d := range days {
		out.DailyTrend = append(out.DailyTrend, models.TrendPoint{
			Date:        util.DayKey(d.Day),
			AvgAccuracy: util.Round2(d.Avg),
		})
	}

	if a.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := a.cache.SetBytes(cacheKey, b, a.cacheTTL); err != nil {
				a.log.Warn("metrics cache write failed", logger.Error(err))
			}
		}
	}
	return out, nil
}
