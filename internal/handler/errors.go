package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/wire"
)

// mapCompositeError converts a domain error to an HTTP status and the message
// shown to the caller. Unexpected failures are not described outward.
func mapCompositeError(err error) (int, string) {
	var e *apierr.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal server error"
	}
	switch e.Kind {
	case apierr.InvalidInput:
		return http.StatusUnprocessableEntity, e.Error()
	case apierr.NotFound:
		return http.StatusNotFound, e.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapCompositeError(err)

	lg := zctx.From(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		lg.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeError(w, r, status, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, wire.Encode(func(e *jx.Encoder) {
		wire.EncodeErrorInfo(e, wire.ErrorInfo{
			Timestamp: time.Now(),
			Path:      r.URL.Path,
			Status:    status,
			Error:     http.StatusText(status),
			Message:   msg,
		})
	}))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
