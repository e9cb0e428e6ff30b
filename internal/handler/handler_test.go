package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/domain/composite"
	"github.com/xenking/product-composite/internal/inprocess"
	"github.com/xenking/product-composite/internal/wire"
)

func newTestMux(t *testing.T, productOpts inprocess.Options) *http.ServeMux {
	t.Helper()
	svc, err := composite.NewService(composite.Config{ServiceAddress: "composite:7000"},
		inprocess.NewProductStore(productOpts),
		inprocess.NewRecommendationStore(inprocess.Options{Address: "rec:8080"}),
		inprocess.NewReviewStore(inprocess.Options{Address: "rev:8080"}),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeErrorInfo(t *testing.T, rec *httptest.ResponseRecorder) wire.ErrorInfo {
	t.Helper()
	var info wire.ErrorInfo
	require.NoError(t, wire.Decode(rec.Body.Bytes(), func(d *jx.Decoder) error {
		return wire.DecodeErrorInfo(d, &info)
	}))
	return info
}

const compositeBody = `{
	"productId": 1,
	"name": "name",
	"weight": 1,
	"recommendations": [
		{"recommendationId": 1, "author": "a", "rate": 1, "content": "c"},
		{"recommendationId": 2, "author": "a", "rate": 2, "content": "c"}
	],
	"reviews": [
		{"reviewId": 1, "author": "a", "subject": "s", "content": "c"}
	]
}`

func TestCompositeLifecycle(t *testing.T) {
	mux := newTestMux(t, inprocess.Options{Address: "product:8080"})

	rec := serve(mux, http.MethodPost, "/product-composite", compositeBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(mux, http.MethodGet, "/product-composite/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"productId": 1,
		"name": "name",
		"weight": 1,
		"recommendations": [
			{"recommendationId": 1, "author": "a", "rate": 1, "content": "c"},
			{"recommendationId": 2, "author": "a", "rate": 2, "content": "c"}
		],
		"reviews": [
			{"reviewId": 1, "author": "a", "subject": "s", "content": "c"}
		],
		"serviceAddresses": {"cmp": "composite:7000", "pro": "product:8080", "rev": "rev:8080", "rec": "rec:8080"}
	}`, rec.Body.String())

	rec = serve(mux, http.MethodDelete, "/product-composite/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(mux, http.MethodDelete, "/product-composite/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodGet, "/product-composite/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetComposite_Errors(t *testing.T) {
	tests := []struct {
		name        string
		productOpts inprocess.Options
		target      string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			target:      "/product-composite/13",
			wantStatus:  http.StatusNotFound,
			wantMessage: "No product found for productId: 13",
		},
		{
			name:        "invalid id",
			target:      "/product-composite/-1",
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Invalid productId: -1",
		},
		{
			name:        "type mismatch",
			target:      "/product-composite/no-integer",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Type mismatch.",
		},
		{
			name:        "product backend down",
			productOpts: inprocess.Options{Fail: apierr.Wrap(errors.New("connection refused"), "/product/1")},
			target:      "/product-composite/1",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t, tt.productOpts)

			rec := serve(mux, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, rec.Code)

			info := decodeErrorInfo(t, rec)
			assert.Equal(t, tt.wantStatus, info.Status)
			assert.Equal(t, tt.wantMessage, info.Message)
			assert.Equal(t, tt.target, info.Path)
			assert.Equal(t, http.StatusText(tt.wantStatus), info.Error)
			assert.False(t, info.Timestamp.IsZero())
		})
	}
}

func TestCreateComposite_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "malformed json", body: `{"productId": 1,`, wantStatus: http.StatusBadRequest},
		{name: "wrong type", body: `{"productId": "one"}`, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: "", wantStatus: http.StatusBadRequest},
		{name: "null body", body: "null", wantStatus: http.StatusBadRequest},
		{name: "trailing data", body: `{"productId": 1} {"productId": 2}`, wantStatus: http.StatusBadRequest},
		{name: "invalid id", body: `{"productId": 0, "name": "n"}`, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t, inprocess.Options{})

			rec := serve(mux, http.MethodPost, "/product-composite", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateComposite_Duplicate(t *testing.T) {
	mux := newTestMux(t, inprocess.Options{})

	rec := serve(mux, http.MethodPost, "/product-composite", compositeBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodPost, "/product-composite", compositeBody)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Duplicate key, Product Id: 1", decodeErrorInfo(t, rec).Message)
}

func TestMapCompositeError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{err: apierr.Invalid("Invalid productId: 0"), wantStatus: 422, wantMsg: "Invalid productId: 0"},
		{err: errors.Wrap(apierr.Missing("gone"), "get"), wantStatus: 404, wantMsg: "gone"},
		{err: apierr.Wrap(context.DeadlineExceeded, "/review"), wantStatus: 500, wantMsg: "internal server error"},
		{err: errors.New("plain"), wantStatus: 500, wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		status, msg := mapCompositeError(tt.err)
		assert.Equal(t, tt.wantStatus, status, tt.err.Error())
		assert.Equal(t, tt.wantMsg, msg)
	}
}
