package integration

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-faster/jx"

	"github.com/xenking/product-composite/internal/domain/apierr"
	"github.com/xenking/product-composite/internal/wire"
)

// Translate maps a non-2xx backend response onto the error taxonomy.
//
// 404 becomes NotFound and 422 becomes InvalidInput. Their message is taken
// from the backend error document when it decodes completely and carries one,
// otherwise from the status line. Any other status is Unexpected. Translate never fails.
func Translate(method, target string, status int, body []byte) *apierr.Error {
	fallback := fmt.Sprintf("%d %s from %s %s", status, http.StatusText(status), method, target)

	var info wire.ErrorInfo
	if len(body) > 0 {
		var doc wire.ErrorInfo
		if err := wire.Decode(body, func(d *jx.Decoder) error {
			return wire.DecodeErrorInfo(d, &doc)
		}); err == nil {
			info = doc
		}
	}

	path := info.Path
	if path == "" {
		path = requestPath(target)
	}

	var kind apierr.Kind
	switch status {
	case http.StatusNotFound:
		kind = apierr.NotFound
	case http.StatusUnprocessableEntity:
		kind = apierr.InvalidInput
	default:
		return &apierr.Error{Kind: apierr.Unexpected, Message: fallback, Path: path}
	}

	msg := info.Message
	if msg == "" {
		msg = fallback
	}
	return &apierr.Error{Kind: kind, Message: msg, Path: path}
}

func requestPath(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.RequestURI()
}
