package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobReportOutcome(t *testing.T) {
	now := time.Now().UTC()

	t.Run("empty run is success", func(t *testing.T) {
		r := NewJobReport("scoring", now)
		assert.Equal(t, OutcomeSuccess, r.Outcome())
	})

	t.Run("all succeeded", func(t *testing.T) {
		r := NewJobReport("ingestion", now)
		r.Success("short", ItemCreated, "")
		r.Success("long", ItemDeduped, "already exists")
		assert.Equal(t, OutcomeSuccess, r.Outcome())
		assert.Equal(t, 2, r.Succeeded)
	})

	t.Run("mixed is partial", func(t *testing.T) {
		r := NewJobReport("ingestion", now)
		r.Success("short", ItemCreated, "")
		r.Failure("long", "fetch inference: timeout")
		assert.Equal(t, OutcomePartial, r.Outcome())
	})

	t.Run("all failed", func(t *testing.T) {
		r := NewJobReport("scoring", now)
		r.Failure("a", "truth unavailable")
		r.Failure("b", "truth unavailable")
		assert.Equal(t, OutcomeFailed, r.Outcome())
	})
}

func TestPredictionScored(t *testing.T) {
	p := &Prediction{}
	assert.False(t, p.Scored())

	actual, score := 100.0, 95.5
	p.ActualValue = &actual
	assert.False(t, p.Scored())

	p.AccuracyScore = &score
	assert.True(t, p.Scored())
}
