package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/domain/product"
	"github.com/xenking/product-composite/internal/domain/recommendation"
	"github.com/xenking/product-composite/internal/domain/review"
)

// --- Helpers ---

func newBackend(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func requireKind(t *testing.T, err error, kind apierr.Kind) *apierr.Error {
	t.Helper()
	require.Error(t, err)
	var e *apierr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "error: %v", err)
	return e
}

// --- Tests ---

func TestProductClient_Get(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /product/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "1":
			writeJSON(w, http.StatusOK, `{"productId":1,"name":"name","weight":20,"serviceAddress":"product:8080"}`)
		case "13":
			writeJSON(w, http.StatusNotFound, `{"timestamp":"2024-03-01T10:00:00Z","path":"/product/13","status":404,"error":"Not Found","message":"No product found for productId: 13"}`)
		case "0":
			writeJSON(w, http.StatusUnprocessableEntity, `{"path":"/product/0","status":422,"message":"Invalid productId: 0"}`)
		case "2":
			writeJSON(w, http.StatusOK, `{"productId":`)
		case "3":
			writeJSON(w, http.StatusOK, `null`)
		case "4":
			writeJSON(w, http.StatusOK, `{"productId":4,"name":"x"} trailing-garbage`)
		case "5":
			writeJSON(w, http.StatusOK, `{"productId":5,"name":"`+strings.Repeat("a", maxBodySize)+`"}`)
		default:
			writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
		}
	})
	srv := newBackend(t, mux)

	c, err := NewProductClient(Options{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL())
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		p, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, product.Product{ID: 1, Name: "name", Weight: 20, ServiceAddress: "product:8080"}, *p)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.Get(ctx, 13)
		e := requireKind(t, err, apierr.NotFound)
		assert.Equal(t, "No product found for productId: 13", e.Message)
		assert.Equal(t, "/product/13", e.Path)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := c.Get(ctx, 0)
		e := requireKind(t, err, apierr.InvalidInput)
		assert.Equal(t, "Invalid productId: 0", e.Message)
	})

	t.Run("undecodable body", func(t *testing.T) {
		_, err := c.Get(ctx, 2)
		requireKind(t, err, apierr.Unexpected)
	})

	t.Run("null body", func(t *testing.T) {
		p, err := c.Get(ctx, 3)
		requireKind(t, err, apierr.Unexpected)
		assert.Nil(t, p)
	})

	t.Run("trailing data", func(t *testing.T) {
		p, err := c.Get(ctx, 4)
		requireKind(t, err, apierr.Unexpected)
		assert.Nil(t, p)
	})

	t.Run("body too large", func(t *testing.T) {
		_, err := c.Get(ctx, 5)
		e := requireKind(t, err, apierr.Unexpected)
		assert.Contains(t, e.Message, "response too large")
	})

	t.Run("server error", func(t *testing.T) {
		_, err := c.Get(ctx, 500)
		e := requireKind(t, err, apierr.Unexpected)
		assert.Equal(t, "500 Internal Server Error from GET "+srv.URL+"/product/500", e.Message)
	})
}

func TestProductClient_CreateDelete(t *testing.T) {
	var gotBody string
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /product", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, `{"productId":1,"name":"n","weight":2,"serviceAddress":"product:8080"}`)
	})
	mux.HandleFunc("DELETE /product/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("id")
		w.WriteHeader(http.StatusOK)
	})
	srv := newBackend(t, mux)

	c, err := NewProductClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	created, err := c.Create(context.Background(), product.Product{ID: 1, Name: "n", Weight: 2})
	require.NoError(t, err)
	assert.Equal(t, "product:8080", created.ServiceAddress)
	assert.JSONEq(t, `{"productId":1,"name":"n","weight":2}`, gotBody)

	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, "1", deleted)
}

func TestRecommendationClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recommendation", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("productId") {
		case "1":
			writeJSON(w, http.StatusOK, `[
				{"productId":1,"recommendationId":1,"author":"a","rate":1,"content":"c","serviceAddress":"rec:8080"},
				{"productId":1,"recommendationId":2,"author":"a","rate":2,"content":"c","serviceAddress":"rec:8080"}
			]`)
		default:
			writeJSON(w, http.StatusOK, `[]`)
		}
	})
	mux.HandleFunc("POST /recommendation", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"status":422,"message":"Duplicate key, Product Id: 1, Recommendation Id:1"}`)
	})
	var deleteQuery string
	mux.HandleFunc("DELETE /recommendation", func(w http.ResponseWriter, r *http.Request) {
		deleteQuery = r.URL.RawQuery
	})
	srv := newBackend(t, mux)

	c, err := NewRecommendationClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	recs, err := c.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[1].RecommendationID)

	empty, err := c.List(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = c.Create(ctx, recommendation.Recommendation{ProductID: 1, RecommendationID: 1})
	e := requireKind(t, err, apierr.InvalidInput)
	assert.Equal(t, "Duplicate key, Product Id: 1, Recommendation Id:1", e.Message)

	require.NoError(t, c.Delete(ctx, 1))
	assert.Equal(t, "productId=1", deleteQuery)
}

func TestReviewClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /review", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"productId":3,"reviewId":1,"author":"a","subject":"s","content":"c","serviceAddress":"rev:8080"}]`)
	})
	mux.HandleFunc("POST /review", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		writeJSON(w, http.StatusOK, string(b))
	})
	srv := newBackend(t, mux)

	c, err := NewReviewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	revs, err := c.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, review.Review{ProductID: 3, ReviewID: 1, Author: "a", Subject: "s", Content: "c", ServiceAddress: "rev:8080"}, revs[0])

	created, err := c.Create(ctx, review.Review{ProductID: 3, ReviewID: 2, Subject: "s"})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ReviewID)
	assert.Equal(t, "s", created.Subject)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewReviewClient(Options{BaseURL: base})
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	_, err = c.List(ctx, 1)
	e := requireKind(t, err, apierr.Unexpected)
	assert.Equal(t, "/review?productId=1", e.Path)
	assert.Error(t, e.Err)
	assert.Equal(t, 1, logs.FilterMessage("Backend call failed").Len())
}

func TestClient_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /product/{id}", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	srv := newBackend(t, mux)

	c, err := NewProductClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Get(context.Background(), 1)
	requireKind(t, err, apierr.Unexpected)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_UnexpectedStatusLogsBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /product/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"message":"maintenance"}`)
	})
	srv := newBackend(t, mux)

	c, err := NewProductClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	err = c.Delete(ctx, 1)
	requireKind(t, err, apierr.Unexpected)

	entries := logs.FilterMessage("Unexpected backend status").All()
	require.Len(t, entries, 1)
	assert.Equal(t, `{"message":"maintenance"}`, entries[0].ContextMap()["body"])
	assert.EqualValues(t, http.StatusServiceUnavailable, entries[0].ContextMap()["status"])
}

func TestClient_Ping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /actuator/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"UP"}`)
	})
	mux.HandleFunc("GET /down", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"status":"DOWN"}`)
	})
	srv := newBackend(t, mux)

	up, err := NewProductClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, up.Ping(context.Background()))

	down, err := NewProductClient(Options{BaseURL: srv.URL, HealthPath: "/down"})
	require.NoError(t, err)
	assert.Error(t, down.Ping(context.Background()))
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://product:80", want: "http://product:80"},
		{in: " https://product:443// ", want: "https://product:443"},
		{in: "http://product/api/", want: "http://product/api"},
		{in: "", wantErr: true},
		{in: "product:80", wantErr: true},
		{in: "ftp://product", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate(t *testing.T) {
	const target = "http://product:80/product/13"

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apierr.Kind
		wantMsg  string
		wantPath string
	}{
		{
			name:     "not found with document",
			status:   http.StatusNotFound,
			body:     `{"path":"/product/13","status":404,"message":"No product found for productId: 13"}`,
			wantKind: apierr.NotFound,
			wantMsg:  "No product found for productId: 13",
			wantPath: "/product/13",
		},
		{
			name:     "not found without message",
			status:   http.StatusNotFound,
			body:     `{"status":404}`,
			wantKind: apierr.NotFound,
			wantMsg:  "404 Not Found from GET " + target,
			wantPath: "/product/13",
		},
		{
			name:     "invalid input with plain text body",
			status:   http.StatusUnprocessableEntity,
			body:     `bad request`,
			wantKind: apierr.InvalidInput,
			wantMsg:  "422 Unprocessable Entity from GET " + target,
			wantPath: "/product/13",
		},
		{
			name:     "invalid input with empty body",
			status:   http.StatusUnprocessableEntity,
			wantKind: apierr.InvalidInput,
			wantMsg:  "422 Unprocessable Entity from GET " + target,
			wantPath: "/product/13",
		},
		{
			name:     "not found with truncated document",
			status:   http.StatusNotFound,
			body:     `{"message":"partial doc","status":`,
			wantKind: apierr.NotFound,
			wantMsg:  "404 Not Found from GET " + target,
			wantPath: "/product/13",
		},
		{
			name:     "invalid input with trailing data",
			status:   http.StatusUnprocessableEntity,
			body:     `{"path":"/elsewhere","message":"half"} junk`,
			wantKind: apierr.InvalidInput,
			wantMsg:  "422 Unprocessable Entity from GET " + target,
			wantPath: "/product/13",
		},
		{
			name:     "bad request is unexpected",
			status:   http.StatusBadRequest,
			body:     `{"message":"Type mismatch."}`,
			wantKind: apierr.Unexpected,
			wantMsg:  "400 Bad Request from GET " + target,
			wantPath: "/product/13",
		},
		{
			name:     "server error",
			status:   http.StatusBadGateway,
			wantKind: apierr.Unexpected,
			wantMsg:  "502 Bad Gateway from GET " + target,
			wantPath: "/product/13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Translate(http.MethodGet, target, tt.status, []byte(tt.body))
			require.NotNil(t, e)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.wantPath, e.Path)
		})
	}
}
