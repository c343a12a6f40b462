package models

// MetricsRequest carries the query parameters of the accuracy metrics
// endpoint.
type MetricsRequest struct {
	Days int `query:"days" default:"30" validate:"gte=1,lte=90"`
}
