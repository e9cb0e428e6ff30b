// Package integration implements the product, recommendation and review
// backends as HTTP clients.
//
// Every operation issues exactly one request to the configured base address
// and never retries. Failures are reported as *apierr.Error: 404 and 422
// responses keep their meaning, everything else is Unexpected.
package integration

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/wire"
)

const (
	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 3 * time.Second
	// DefaultHealthPath is probed by Ping.
	DefaultHealthPath = "/actuator/health"

	maxBodySize = 1 << 20
)

// Options configures a backend client.
type Options struct {
	// BaseURL is the scheme and authority of the backend, e.g. http://product:80.
	BaseURL string
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// HealthPath is requested by Ping. Empty means DefaultHealthPath.
	HealthPath string
	// HTTPClient is shared between clients. Nil means NewHTTPClient().
	HTTPClient *http.Client
}

// NewHTTPClient returns an http.Client with a pooled transport instrumented
// by otelhttp.
func NewHTTPClient(opts ...otelhttp.Option) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: otelhttp.NewTransport(tr, opts...)}
}

// ParseBaseURL validates a backend base URL and strips trailing slashes.
func ParseBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", errors.New("base url required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Errorf("base url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", errors.Errorf("base url %q: missing host", raw)
	}
	return raw, nil
}

type client struct {
	backend    string
	baseURL    string
	healthPath string
	timeout    time.Duration
	http       *http.Client
}

func newClient(backend string, opts Options) (*client, error) {
	base, err := ParseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "%s backend", backend)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	healthPath := opts.HealthPath
	if healthPath == "" {
		healthPath = DefaultHealthPath
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = NewHTTPClient()
	}

	return &client{
		backend:    backend,
		baseURL:    base,
		healthPath: healthPath,
		timeout:    timeout,
		http:       hc,
	}, nil
}

// BaseURL returns the normalized base address.
func (c *client) BaseURL() string { return c.baseURL }

// Ping reports whether the backend health endpoint answers with 2xx.
func (c *client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.healthPath, nil, nil)
}

// do performs one request against path. The request body is produced by
// encode and the 2xx response body is consumed by decode; either may be nil.
func (c *client) do(
	ctx context.Context,
	method, path string,
	encode func(e *jx.Encoder),
	decode func(d *jx.Decoder) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	lg := zctx.From(ctx).With(
		zap.String("backend", c.backend),
		zap.String("method", method),
		zap.String("url", target),
	)

	var body io.Reader
	if encode != nil {
		body = bytes.NewReader(wire.Encode(encode))
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apierr.Wrap(errors.Wrap(err, "create request"), path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		lg.Debug("Backend call failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return apierr.Wrap(err, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		lg.Debug("Backend body read failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return apierr.Wrap(errors.Wrap(err, "read body"), path)
	}
	if len(data) > maxBodySize {
		lg.Warn("Backend response too large", zap.Int("status", resp.StatusCode), zap.Int("limit", maxBodySize))
		return apierr.Wrap(errors.Errorf("response too large: exceeds %d bytes", maxBodySize), path)
	}

	lg = lg.With(zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := Translate(method, target, resp.StatusCode, data)
		if e.Kind == apierr.Unexpected {
			lg.Warn("Unexpected backend status", zap.ByteString("body", data))
		} else {
			lg.Debug("Backend call rejected", zap.String("message", e.Message))
		}
		return e
	}

	if decode != nil {
		if err := wire.Decode(data, decode); err != nil {
			lg.Debug("Backend response undecodable", zap.Error(err))
			return apierr.Wrap(errors.Wrap(err, "decode response"), path)
		}
	}
	lg.Debug("Backend call")
	return nil
}
