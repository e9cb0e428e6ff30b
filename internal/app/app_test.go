package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRun_InProcess(t *testing.T) {
	addr := freeAddr(t)
	cfg := &Config{
		Addr:           addr,
		ServiceAddress: "composite:7000",
		Backends:       BackendsConfig{Mode: ModeInProcess},
		Health:         HealthConfig{Interval: 20 * time.Millisecond, Timeout: time.Second},
		RateLimit:      RateLimitConfig{Max: 1000, Window: time.Minute},
		Graceful:       GracefulConfig{ShutdownTimeout: 2 * time.Second},
	}

	lg := zaptest.NewLogger(t)
	ctx, cancel := context.WithCancel(zctx.Base(context.Background(), lg))
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, lg, noopTelemetry{}, cfg) }()

	base := "http://" + addr
	client := &http.Client{Timeout: 5 * time.Second}
	do := func(method, path, body string) (*http.Response, string) {
		t.Helper()
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, base+path, r)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(b)
	}

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/readyz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, body := do(http.MethodGet, "/livez", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = do(http.MethodPost, "/product-composite", `{
		"productId": 1, "name": "name", "weight": 1,
		"recommendations": [{"recommendationId": 1, "author": "a", "rate": 1, "content": "c"}],
		"reviews": [{"reviewId": 1, "author": "a", "subject": "s", "content": "c"}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = do(http.MethodGet, "/product-composite/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{
		"productId": 1, "name": "name", "weight": 1,
		"recommendations": [{"recommendationId": 1, "author": "a", "rate": 1, "content": "c"}],
		"reviews": [{"reviewId": 1, "author": "a", "subject": "s", "content": "c"}],
		"serviceAddresses": {"cmp": "composite:7000", "pro": "composite:7000", "rev": "composite:7000", "rec": "composite:7000"}
	}`, body)

	resp, body = do(http.MethodGet, "/product-composite/13", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "No product found for productId: 13")

	resp, _ = do(http.MethodGet, "/product-composite/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(http.MethodDelete, "/product-composite/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(http.MethodDelete, "/product-composite/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
