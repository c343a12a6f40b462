package repository

import (
	"context"
	"time"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	pkgkafka "PredTrack/pkg/kafka"
)

// KafkaPublisher emits prediction.scored events for downstream consumers.
// Keyed by horizon class so per-horizon ordering is preserved.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka-backed scored-event publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.ScoredPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type scoredEvent struct {
	Event          string    `json:"event"`
	PredictionID   string    `json:"prediction_id"`
	HorizonClass   string    `json:"horizon_class"`
	PredictedValue string    `json:"predicted_value"`
	ActualValue    float64   `json:"actual_value"`
	AccuracyScore  float64   `json:"accuracy_score"`
	MaturityTime   time.Time `json:"maturity_time"`
}

func (p *KafkaPublisher) PublishScored(ctx context.Context, pred *models.Prediction) error {
	ev := scoredEvent{
		Event:          "prediction.scored",
		PredictionID:   pred.ID,
		HorizonClass:   string(pred.HorizonClass),
		PredictedValue: pred.PredictedValue,
		MaturityTime:   pred.MaturityTime,
	}
	if pred.ActualValue != nil {
		ev.ActualValue = *pred.ActualValue
	}
	if pred.AccuracyScore != nil {
		ev.AccuracyScore = *pred.AccuracyScore
	}
	return p.producer.Publish(ctx, p.topic, []byte(pred.HorizonClass), ev)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
