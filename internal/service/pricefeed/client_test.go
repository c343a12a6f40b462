package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PredTrack/pkg/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:    baseURL,
		Asset:      "bitcoin",
		Quote:      "usd",
		Timeout:    2 * time.Second,
		NearWindow: 60 * time.Second,
		RetryDelay: time.Millisecond,
		MaxRetries: 3,
	}, logger.Nop())
	require.NoError(t, err)
	return c
}

func currentBody(price float64) string {
	return fmt.Sprintf(`{"bitcoin":{"usd":%g}}`, price)
}

func rangeBody(points ...[2]float64) string {
	b, _ := json.Marshal(map[string][][2]float64{"prices": points})
	return string(b)
}

func TestValueAtNearNowUsesCurrentEndpoint(t *testing.T) {
	var currentCalls, rangeCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/simple/price" {
			atomic.AddInt32(&currentCalls, 1)
			fmt.Fprint(w, currentBody(64250.12))
			return
		}
		atomic.AddInt32(&rangeCalls, 1)
		fmt.Fprint(w, rangeBody())
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	now := time.Now().UTC()

	v, err := c.ValueAt(context.Background(), now.Add(-30*time.Second), now)
	require.NoError(t, err)
	assert.Equal(t, 64250.12, v)

	// Future target must not hit the historical endpoint either.
	_, err = c.ValueAt(context.Background(), now.Add(time.Hour), now)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&currentCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&rangeCalls))
}

func TestValueAtSelectsNearestPoint(t *testing.T) {
	now := time.Now().UTC()
	target := now.Add(-time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coins/bitcoin/market_chart/range", r.URL.Path)
		fmt.Fprint(w, rangeBody(
			[2]float64{float64(target.Add(-50 * time.Second).UnixMilli()), 100},
			[2]float64{float64(target.Add(-5 * time.Second).UnixMilli()), 200},
			[2]float64{float64(target.Add(40 * time.Second).UnixMilli()), 300},
		))
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).ValueAt(context.Background(), target, now)
	require.NoError(t, err)
	assert.Equal(t, 200.0, v)
}

func TestValueAtFallsBackOnEmptyRange(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/simple/price" {
			fmt.Fprint(w, currentBody(555))
			return
		}
		fmt.Fprint(w, rangeBody())
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).ValueAt(context.Background(), now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 555.0, v)
}

func TestValueAtFallsBackOnClientError(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/simple/price" {
			fmt.Fprint(w, currentBody(777))
			return
		}
		http.Error(w, "range too narrow", http.StatusBadRequest)
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).ValueAt(context.Background(), now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 777.0, v)
}

func TestValueAtSurfacesRateLimitAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	now := time.Now().UTC()
	_, err := testClient(t, srv.URL).ValueAt(context.Background(), now.Add(-time.Hour), now)
	assert.ErrorIs(t, err, ErrRateLimited)
	// initial attempt plus three retries
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestValueAtSurfacesUnavailableAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	now := time.Now().UTC()
	_, err := testClient(t, srv.URL).ValueAt(context.Background(), now.Add(-time.Hour), now)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCurrentValueMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ethereum":{"usd":1}}`)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).CurrentValue(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, currentBody(42))
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).CurrentValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}
