package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
environment: production
trigger:
  token: secret
postgres:
  host: db.internal
forecast:
  base_url: https://forecast.example.com
  api_key: fk
  chain_id: testnet-1
  asset: ETH
  horizons:
    - class: short
      duration: 5m
      topic_id: "13"
    - class: long
      duration: 8h
      topic_id: "14"
pricefeed:
  base_url: https://prices.example.com
  asset: ethereum
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 18, cfg.Forecast.ScaleDecimals)
	assert.Equal(t, "usd", cfg.PriceFeed.Quote)
	assert.Equal(t, 60*time.Second, cfg.Cache.MetricsTTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Development())
}

func TestLoadParsesHorizons(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	require.Len(t, cfg.Forecast.Horizons, 2)
	assert.Equal(t, "short", cfg.Forecast.Horizons[0].Class)
	assert.Equal(t, 5*time.Minute, cfg.Forecast.Horizons[0].Duration)
	assert.Equal(t, "14", cfg.Forecast.Horizons[1].TopicID)
}

func TestLoadRejectsMissingToken(t *testing.T) {
	cfg := `
environment: production
postgres:
  host: db.internal
forecast:
  base_url: https://forecast.example.com
  api_key: fk
  chain_id: testnet-1
  asset: ETH
  horizons:
    - {class: short, duration: 5m, topic_id: "13"}
pricefeed:
  base_url: https://prices.example.com
  asset: ethereum
`
	_, err := Load(writeConfig(t, cfg))
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateHorizonClass(t *testing.T) {
	cfg := `
environment: production
trigger: {token: secret}
postgres: {host: db.internal}
forecast:
  base_url: https://forecast.example.com
  api_key: fk
  chain_id: testnet-1
  asset: ETH
  horizons:
    - {class: short, duration: 5m, topic_id: "13"}
    - {class: short, duration: 10m, topic_id: "14"}
pricefeed:
  base_url: https://prices.example.com
  asset: ethereum
`
	_, err := Load(writeConfig(t, cfg))
	assert.ErrorContains(t, err, "duplicate class")
}

func TestLoadRejectsKafkaEnabledWithoutBrokers(t *testing.T) {
	cfg := validYAML + `
kafka:
  enabled: true
`
	_, err := Load(writeConfig(t, cfg))
	assert.ErrorContains(t, err, "kafka.brokers")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PRED_TRIGGER_TOKEN", "env-secret")
	t.Setenv("PRED_POSTGRES_HOST", "env-db")

	cfg := `
environment: production
forecast:
  base_url: https://forecast.example.com
  api_key: fk
  chain_id: testnet-1
  asset: ETH
  horizons:
    - {class: short, duration: 5m, topic_id: "13"}
pricefeed:
  base_url: https://prices.example.com
  asset: ethereum
`
	c, err := LoadWithEnv(writeConfig(t, cfg))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", c.Trigger.Token)
	assert.Equal(t, "env-db", c.Postgres.Host)
}
