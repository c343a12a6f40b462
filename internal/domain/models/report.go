package models

import "time"

// Outcome is the tri-state result of a job invocation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// ItemStatus classifies the result of one unit of work inside a job run.
type ItemStatus string

const (
	ItemCreated ItemStatus = "created"
	ItemDeduped ItemStatus = "deduped"
	ItemScored  ItemStatus = "scored"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// ItemResult carries the per-item outcome and a diagnostic detail for failed
// items, so trigger responses are diagnosable without reading logs.
type ItemResult struct {
	Key    string     `json:"key"`
	Status ItemStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// JobReport is the batch summary of a single job invocation. Item-level
// failures are collected here instead of aborting the run.
type JobReport struct {
	Job       string       `json:"job"`
	StartedAt time.Time    `json:"started_at"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items"`
}

// NewJobReport creates an empty report for a job starting at now.
func NewJobReport(job string, now time.Time) *JobReport {
	return &JobReport{Job: job, StartedAt: now}
}

// Success records a non-failed item.
func (r *JobReport) Success(key string, status ItemStatus, detail string) {
	r.Succeeded++
	r.Items = append(r.Items, ItemResult{Key: key, Status: status, Detail: detail})
}

// Failure records a failed item with its diagnostic reason.
func (r *JobReport) Failure(key, detail string) {
	r.Failed++
	r.Items = append(r.Items, ItemResult{Key: key, Status: ItemFailed, Detail: detail})
}

// Outcome collapses the counters into the tri-state result. An empty run is a
// success: there was nothing to do and nothing went wrong.
func (r *JobReport) Outcome() Outcome {
	switch {
	case r.Failed == 0:
		return OutcomeSuccess
	case r.Succeeded == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}
