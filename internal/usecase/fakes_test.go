package usecase

import (
	"context"
	"sort"
	"time"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	"PredTrack/pkg/util"
)

// fakeStore is an in-memory PredictionStore mirroring the Postgres semantics
// the jobs rely on: the dedup constraint and the write-once score update.
type fakeStore struct {
	rows map[string]*models.Prediction

	insertErr error
	updateErr error
	findErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*models.Prediction)}
}

func (s *fakeStore) Insert(_ context.Context, p *models.Prediction) (*models.Prediction, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	for _, r := range s.rows {
		if r.HorizonClass == p.HorizonClass && r.MaturityTime.Equal(p.MaturityTime) {
			return nil, repository.ErrDuplicate
		}
	}
	cp := *p
	s.rows[p.ID] = &cp
	return &cp, nil
}

func (s *fakeStore) FindLatestByHorizon(_ context.Context, h models.HorizonClass) (*models.Prediction, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var latest *models.Prediction
	for _, r := range s.rows {
		if r.HorizonClass != h {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest, nil
}

func (s *fakeStore) FindMatureUnscored(_ context.Context, now time.Time) ([]*models.Prediction, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []*models.Prediction
	for _, r := range s.rows {
		if !r.MaturityTime.After(now) && r.AccuracyScore == nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaturityTime.Before(out[j].MaturityTime) })
	return out, nil
}

func (s *fakeStore) UpdateScore(_ context.Context, id string, actual, score float64) (*models.Prediction, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	r, ok := s.rows[id]
	if !ok || r.AccuracyScore != nil {
		return nil, repository.ErrAlreadyScored
	}
	r.ActualValue = &actual
	r.AccuracyScore = &score
	r.UpdatedAt = time.Now().UTC()
	return r, nil
}

func (s *fakeStore) AggregateAverage(_ context.Context, from, to time.Time) (*float64, error) {
	var sum float64
	var n int
	for _, r := range s.rows {
		if r.AccuracyScore == nil {
			continue
		}
		if r.MaturityTime.Before(from) || !r.MaturityTime.Before(to) {
			continue
		}
		sum += *r.AccuracyScore
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}

func (s *fakeStore) AggregateByDay(_ context.Context, from, to time.Time) ([]models.DayAverage, error) {
	type acc struct {
		sum float64
		n   int
	}
	buckets := make(map[time.Time]*acc)
	for _, r := range s.rows {
		if r.AccuracyScore == nil {
			continue
		}
		if r.MaturityTime.Before(from) || !r.MaturityTime.Before(to) {
			continue
		}
		day := util.StartOfDay(r.MaturityTime)
		if buckets[day] == nil {
			buckets[day] = &acc{}
		}
		buckets[day].sum += *r.AccuracyScore
		buckets[day].n++
	}
	var out []models.DayAverage
	for day, a := range buckets {
		out = append(out, models.DayAverage{Day: day, Avg: a.sum / float64(a.n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *fakeStore) Purge(context.Context) (int64, error) {
	n := int64(len(s.rows))
	s.rows = make(map[string]*models.Prediction)
	return n, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }

// fakeForecast returns canned inferences per topic.
type fakeForecast struct {
	inferences map[string]*models.Inference
	errs       map[string]error
}

func (f *fakeForecast) LatestInference(_ context.Context, topicID string) (*models.Inference, error) {
	if err := f.errs[topicID]; err != nil {
		return nil, err
	}
	return f.inferences[topicID], nil
}

// fakeTruth returns a fixed value or error, recording requested targets.
type fakeTruth struct {
	value   float64
	err     error
	targets []time.Time
}

func (f *fakeTruth) ValueAt(_ context.Context, target, _ time.Time) (float64, error) {
	f.targets = append(f.targets, target)
	if f.err != nil {
		return 0, f.err
	}
	return f.value, nil
}

// fakePublisher records published predictions.
type fakePublisher struct {
	published []*models.Prediction
	err       error
}

func (p *fakePublisher) PublishScored(_ context.Context, pred *models.Prediction) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, pred)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// nopMetrics satisfies the Metrics boundary.
type nopMetrics struct{}

func (nopMetrics) RecordIngested(string)        {}
func (nopMetrics) RecordDeduped(string)         {}
func (nopMetrics) RecordScored(string, float64) {}
func (nopMetrics) RecordFailure(string, string) {}
func (nopMetrics) RecordLatency(string, float64) {}
