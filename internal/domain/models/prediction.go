package models

import (
	"encoding/json"
	"time"
)

// HorizonClass identifies one of the two configured forecast horizons.
type HorizonClass string

const (
	HorizonShort HorizonClass = "short"
	HorizonLong  HorizonClass = "long"
)

// Valid reports whether h is a known horizon class.
func (h HorizonClass) Valid() bool {
	return h == HorizonShort || h == HorizonLong
}

// Prediction is the central entity of the pipeline. A row is created unscored
// by the ingestion job and transitions exactly once to scored when its
// maturity time has elapsed. ActualValue and AccuracyScore are set together
// in a single update; no other mutation happens after creation.
type Prediction struct {
	ID               string          `json:"id"`
	HorizonClass     HorizonClass    `json:"horizon_class"`
	PredictedValue   string          `json:"predicted_value"`
	ConfidenceLower  *string         `json:"confidence_lower,omitempty"`
	ConfidenceUpper  *string         `json:"confidence_upper,omitempty"`
	MaturityTime     time.Time       `json:"maturity_time"`
	ActualValue      *float64        `json:"actual_value,omitempty"`
	AccuracyScore    *float64        `json:"accuracy_score,omitempty"`
	RawSourcePayload json.RawMessage `json:"raw_source_payload,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Scored reports whether the row has completed the unscored->scored
// transition.
func (p *Prediction) Scored() bool {
	return p.ActualValue != nil && p.AccuracyScore != nil
}

// Inference is a normalized forecast fetched from the forecast network.
// PointEstimate and the confidence bounds are canonical two-decimal strings.
type Inference struct {
	PointEstimate   string          `json:"point_estimate"`
	ConfidenceLower *string         `json:"confidence_lower,omitempty"`
	ConfidenceUpper *string         `json:"confidence_upper,omitempty"`
	RawPayload      json.RawMessage `json:"raw_payload,omitempty"`
}
