// Package forecast retrieves the latest inference per horizon topic from the
// forecast network's consumer API and normalizes values to canonical decimal
// strings.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"PredTrack/internal/domain/models"
	"PredTrack/pkg/logger"
)

// Config holds forecast network client configuration. BaseURL, APIKey,
// ChainID and Asset are mandatory; the process must not start without them.
type Config struct {
	BaseURL string
	APIKey  string
	// ChainID selects the network the consumer API serves, e.g.
	// "ethereum-11155111".
	ChainID string
	Asset   string
	// ScaleDecimals is the fixed-point scale of integer-encoded inference
	// values.
	ScaleDecimals int
	Timeout       time.Duration
	RetryDelay    time.Duration
	MaxRetries    uint64
}

// Client implements the ForecastSource boundary.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
	log        *logger.Logger
}

// NewClient creates a forecast client. Missing network selection or
// credentials is a fatal configuration error.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("forecast: base url is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("forecast: api key is required")
	}
	if cfg.ChainID == "" {
		return nil, fmt.Errorf("forecast: chain id is required")
	}
	if cfg.Asset == "" {
		return nil, fmt.Errorf("forecast: asset is required")
	}
	if cfg.ScaleDecimals <= 0 {
		cfg.ScaleDecimals = 18
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
		cfg:        cfg,
		log:        log,
	}, nil
}

type inferenceResponse struct {
	RequestID string `json:"request_id"`
	Status    bool   `json:"status"`
	Data      struct {
		Signature     string `json:"signature"`
		InferenceData struct {
			NetworkInference         string   `json:"network_inference"`
			ConfidenceIntervalValues []string `json:"confidence_interval_values"`
			Timestamp                int64    `json:"timestamp"`
			TopicID                  string   `json:"topic_id"`
		} `json:"inference_data"`
	} `json:"data"`
}

// LatestInference fetches and normalizes the current inference for a horizon
// topic. Confidence bounds are the first and last entries of the returned
// interval array, normalized independently; a bound that fails to normalize
// is dropped rather than failing the inference.
func (c *Client) LatestInference(ctx context.Context, topicID string) (*models.Inference, error) {
	u := fmt.Sprintf("%s/v2/consumer/price/%s/%s/%s",
		c.cfg.BaseURL, c.cfg.ChainID, c.cfg.Asset, topicID)

	raw, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var body inferenceResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("forecast: decode response: %w", err)
	}
	if !body.Status {
		return nil, fmt.Errorf("forecast: upstream reported failure for topic %s", topicID)
	}

	data := body.Data.InferenceData
	point, err := NormalizeValue(data.NetworkInference, c.cfg.ScaleDecimals)
	if err != nil {
		return nil, fmt.Errorf("forecast: normalize inference for topic %s: %w", topicID, err)
	}

	inf := &models.Inference{
		PointEstimate: point,
		RawPayload:    json.RawMessage(raw),
	}

	if n := len(data.ConfidenceIntervalValues); n > 0 {
		lower, lerr := NormalizeValue(data.ConfidenceIntervalValues[0], c.cfg.ScaleDecimals)
		upper, uerr := NormalizeValue(data.ConfidenceIntervalValues[n-1], c.cfg.ScaleDecimals)
		if lerr != nil || uerr != nil {
			c.log.Warn("dropping unparsable confidence bounds",
				logger.String("topic", topicID))
		} else {
			inf.ConfidenceLower = &lower
			inf.ConfidenceUpper = &upper
		}
	}

	return inf, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var raw []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("x-api-key", c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("rate limited: status %d", resp.StatusCode)
		case resp.StatusCode >= 500:
			return fmt.Errorf("upstream error: status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("client error: status %d", resp.StatusCode))
		}

		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), c.cfg.MaxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return raw, nil
}
