package models

import "time"

// AccuracyKPIs holds rolling-window average accuracy. A window with no scored
// rows is null, not zero.
type AccuracyKPIs struct {
	Daily   *float64 `json:"daily"`
	Weekly  *float64 `json:"weekly"`
	Monthly *float64 `json:"monthly"`
}

// TrendPoint is one calendar-day (UTC) bucket of the daily trend. Days with
// no scored rows produce no point.
type TrendPoint struct {
	Date        string  `json:"date"`
	AvgAccuracy float64 `json:"avgAccuracy"`
}

// AccuracyMetrics is the aggregator output consumed by the dashboard.
type AccuracyMetrics struct {
	KPIs       AccuracyKPIs `json:"kpis"`
	DailyTrend []TrendPoint `json:"dailyTrend"`
}

// DayAverage is a store-level aggregation row: average accuracy for one UTC
// calendar day.
type DayAverage struct {
	Day time.Time `json:"day"`
	Avg float64   `json:"avg"`
}
