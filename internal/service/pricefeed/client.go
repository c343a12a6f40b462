// Package pricefeed retrieves realized ground-truth prices from the upstream
// market data API, with bounded retry and a current-value fallback for
// historical queries that come back empty near the present.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"PredTrack/pkg/logger"
)

// Config holds pricefeed client configuration.
type Config struct {
	BaseURL string
	// APIKey is optional; when set it is sent for higher rate limits.
	APIKey  string
	Asset   string
	Quote   string
	Timeout time.Duration
	// NearWindow is how close to now a target may be before the historical
	// endpoint stops being reliable and the current-value endpoint is used.
	NearWindow time.Duration
	// RetryDelay and MaxRetries bound the per-call retry policy.
	RetryDelay time.Duration
	MaxRetries uint64
}

// Client implements the TruthSource boundary against a CoinGecko-style API:
// a current simple-price endpoint and a historical market-chart range
// endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
	log        *logger.Logger
}

// Point is one (timestamp, value) pair from the historical range endpoint.
type Point struct {
	Time  time.Time
	Value float64
}

// NewClient creates a pricefeed client.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("pricefeed: base url is required")
	}
	if cfg.Asset == "" || cfg.Quote == "" {
		return nil, fmt.Errorf("pricefeed: asset and quote are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.NearWindow <= 0 {
		cfg.NearWindow = 60 * time.Second
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

// ValueAt returns the realized value at target. Targets within NearWindow of
// now, or in the future, are answered from the current-value endpoint;
// everything else goes through the historical range endpoint with
// nearest-neighbor selection and a current-value fallback on empty or
// client-error results.
func (c *Client) ValueAt(ctx context.Context, target, now time.Time) (float64, error) {
	if target.After(now) || now.Sub(target) <= c.cfg.NearWindow {
		return c.CurrentValue(ctx)
	}

	from := target.Add(-c.cfg.NearWindow)
	to := target.Add(c.cfg.NearWindow)
	points, err := c.RangeValues(ctx, from, to)
	if err != nil {
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
			return 0, err
		}
		// Malformed body or client error: the range query cannot be trusted,
		// fall back to the current value instead of failing the row.
		c.log.Warn("historical query failed, falling back to current value",
			logger.Time("target", target), logger.Error(err))
		return c.currentFallback(ctx, err)
	}
	if len(points) == 0 {
		c.log.Warn("historical query returned no points, falling back to current value",
			logger.Time("target", target))
		return c.currentFallback(ctx, ErrNoData)
	}

	return nearest(points, target).Value, nil
}

// CurrentValue queries the upstream's current-value endpoint.
func (c *Client) CurrentValue(ctx context.Context) (float64, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.cfg.BaseURL, url.QueryEscape(c.cfg.Asset), url.QueryEscape(c.cfg.Quote))

	var body map[string]map[string]float64
	if err := c.getJSON(ctx, u, &body); err != nil {
		return 0, err
	}

	quotes, ok := body[c.cfg.Asset]
	if !ok {
		return 0, fmt.Errorf("%w: asset %q missing from current price body", ErrMalformed, c.cfg.Asset)
	}
	v, ok := quotes[c.cfg.Quote]
	if !ok {
		return 0, fmt.Errorf("%w: quote %q missing from current price body", ErrMalformed, c.cfg.Quote)
	}
	return v, nil
}

// RangeValues queries the historical range endpoint for [from, to].
func (c *Client) RangeValues(ctx context.Context, from, to time.Time) ([]Point, error) {
	u := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=%s&from=%d&to=%d",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Asset), url.QueryEscape(c.cfg.Quote),
		from.Unix(), to.Unix())

	var body struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(body.Prices))
	for _, pair := range body.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, Point{
			Time:  time.UnixMilli(int64(pair[0])).UTC(),
			Value: pair[1],
		})
	}
	return points, nil
}

func (c *Client) currentFallback(ctx context.Context, cause error) (float64, error) {
	v, err := c.CurrentValue(ctx)
	if err != nil {
		return 0, fmt.Errorf("current-value fallback after %v: %w", cause, err)
	}
	return v, nil
}

// getJSON performs one GET with the bounded retry policy: rate limits and
// transient failures are retried up to MaxRetries with a fixed delay, other
// 4xx and decode failures are permanent.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		if c.cfg.APIKey != "" {
			req.Header.Set("x-api-key", c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrRateLimited
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(&ClientError{Status: resp.StatusCode})
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if err := json.Unmarshal(b, out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrMalformed, err))
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), c.cfg.MaxRetries)
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// nearest selects the point whose timestamp is closest to target, first
// encountered winning ties.
func nearest(points []Point, target time.Time) Point {
	best := points[0]
	bestDiff := math.Abs(float64(points[0].Time.Sub(target)))
	for _, p := range points[1:] {
		diff := math.Abs(float64(p.Time.Sub(target)))
		if diff < bestDiff {
			best = p
			bestDiff = diff
		}
	}
	return best
}
