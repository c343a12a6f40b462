package di

import (
	"context"
	"fmt"
	"time"

	"PredTrack/internal/domain/models"
	"PredTrack/internal/domain/repository"
	"PredTrack/internal/handler/api"
	internalrepo "PredTrack/internal/repository"
	"PredTrack/internal/service/cache"
	"PredTrack/internal/service/forecast"
	"PredTrack/internal/service/pricefeed"
	"PredTrack/internal/usecase"
	"PredTrack/pkg/config"
	xhttp "PredTrack/pkg/http"
	pkgkafka "PredTrack/pkg/kafka"
	"PredTrack/pkg/logger"
	"PredTrack/pkg/metrics"
	"PredTrack/pkg/postgres"
	"PredTrack/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvidePostgresClient creates a Postgres client and initializes the schema.
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, error) {
	client, err := postgres.NewClient(
		postgres.WithHost(cfg.Postgres.Host),
		postgres.WithPort(cfg.Postgres.Port),
		postgres.WithDatabase(cfg.Postgres.Database),
		postgres.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		postgres.WithSSLMode(cfg.Postgres.SSLMode),
		postgres.WithMaxConns(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return client, nil
}

// ProvideStore creates the Postgres prediction store.
func ProvideStore(client *postgres.Client) repository.PredictionStore {
	return internalrepo.NewPostgresStore(client.DB())
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the scored-event publisher, or nil when Kafka is
// disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ScoredPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache creates the metrics response cache backend.
func ProvideCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideForecastClient creates the forecast network client.
func ProvideForecastClient(cfg *config.Config, log *logger.Logger) (repository.ForecastSource, error) {
	return forecast.NewClient(forecast.Config{
		BaseURL:       cfg.Forecast.BaseURL,
		APIKey:        cfg.Forecast.APIKey,
		ChainID:       cfg.Forecast.ChainID,
		Asset:         cfg.Forecast.Asset,
		ScaleDecimals: cfg.Forecast.ScaleDecimals,
		Timeout:       cfg.Forecast.Timeout,
		RetryDelay:    cfg.Forecast.RetryDelay,
		MaxRetries:    uint64(cfg.Forecast.MaxRetries),
	}, log)
}

// ProvideTruthSource creates the ground-truth price client.
func ProvideTruthSource(cfg *config.Config, log *logger.Logger) (repository.TruthSource, error) {
	return pricefeed.NewClient(pricefeed.Config{
		BaseURL:    cfg.PriceFeed.BaseURL,
		APIKey:     cfg.PriceFeed.APIKey,
		Asset:      cfg.PriceFeed.Asset,
		Quote:      cfg.PriceFeed.Quote,
		Timeout:    cfg.PriceFeed.Timeout,
		NearWindow: cfg.PriceFeed.NearWindow,
		RetryDelay: cfg.PriceFeed.RetryDelay,
		MaxRetries: uint64(cfg.PriceFeed.MaxRetries),
	}, log)
}

// ProvideHorizons maps configured horizons onto job specs.
func ProvideHorizons(cfg *config.Config) []usecase.HorizonSpec {
	specs := make([]usecase.HorizonSpec, 0, len(cfg.Forecast.Horizons))
	for _, h := range cfg.Forecast.Horizons {
		specs = append(specs, usecase.HorizonSpec{
			Class:    models.HorizonClass(h.Class),
			Duration: h.Duration,
			TopicID:  h.TopicID,
		})
	}
	return specs
}

// ProvideIngestJob creates the ingestion job.
func ProvideIngestJob(
	fc repository.ForecastSource,
	store repository.PredictionStore,
	m repository.Metrics,
	horizons []usecase.HorizonSpec,
	log *logger.Logger,
) *usecase.IngestJob {
	return usecase.NewIngestJob(fc, store, m, horizons, log)
}

// ProvideScoreJob creates the scoring job.
func ProvideScoreJob(
	store repository.PredictionStore,
	truth repository.TruthSource,
	pub repository.ScoredPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.ScoreJob {
	return usecase.NewScoreJob(store, truth, pub, m, log)
}

// ProvideMetricsAggregator creates the KPI aggregator.
func ProvideMetricsAggregator(
	store repository.PredictionStore,
	bc cache.BytesCache,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.MetricsAggregator {
	return usecase.NewMetricsAggregator(store, bc, cfg.Cache.MetricsTTL, log)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *logger.Logger,
	ingest *usecase.IngestJob,
	score *usecase.ScoreJob,
	agg *usecase.MetricsAggregator,
	store repository.PredictionStore,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewPipelineHandler(log, ingest, score, agg, store, cfg.Trigger.Token, cfg.Environment)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	pub repository.ScoredPublisher,
	pg *postgres.Client,
) *server.App {
	return server.New(cfg, log, handler, pub, pg)
}
