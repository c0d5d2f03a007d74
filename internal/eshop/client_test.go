package eshop

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misdekor/pohoda-bridge/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(config.APIConfig{
		BaseURL:            baseURL,
		Password:           "tajne-heslo",
		TimeoutSeconds:     5,
		MaxAttempts:        3,
		BackoffBaseSeconds: 0, // no sleeping in tests
		BackoffPolicy:      "linear",
	}, testLogger())
}

func TestFetchOrdersRequestShape(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"orders": [{"id_order": 5}]}`))
	}))
	defer srv.Close()

	orders, err := testClient(srv.URL).FetchOrders(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 5, orders[0].ID())
	assert.Equal(t, "action=GetOrders&version=v2.0&password=tajne-heslo", gotQuery)
	assert.Equal(t, "misdekor-bridge", gotAgent)
}

func TestFetchOrdersRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			w.Write([]byte(`<html>not json</html>`))
		default:
			w.Write([]byte(`[{"id_order": 1}]`))
		}
	}))
	defer srv.Close()

	orders, err := testClient(srv.URL).FetchOrders(context.Background())

	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchOrdersExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchOrders(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Contains(t, err.Error(), "502") // last underlying cause
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchOrdersStructuralErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchOrders(context.Background())

	assert.ErrorIs(t, err, ErrUnrecognizedShape)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBackoffSchedules(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		c := &Client{backoffBase: 2 * time.Second, policy: "linear"}
		b := c.newBackoff()
		assert.Equal(t, 2*time.Second, b.NextBackOff())
		assert.Equal(t, 4*time.Second, b.NextBackOff())
		assert.Equal(t, 6*time.Second, b.NextBackOff())
	})

	t.Run("exponential", func(t *testing.T) {
		c := &Client{backoffBase: 2 * time.Second, policy: "exponential"}
		b := c.newBackoff()
		assert.Equal(t, 2*time.Second, b.NextBackOff())
		assert.Equal(t, 4*time.Second, b.NextBackOff())
		assert.Equal(t, 8*time.Second, b.NextBackOff())
	})
}
