package wire

import (
	"time"

	"github.com/go-faster/jx"
)

// ErrorInfo is the error document exchanged with backends and returned to
// callers.
type ErrorInfo struct {
	Timestamp time.Time
	Path      string
	Status    int
	Error     string
	Message   string
}

// EncodeErrorInfo writes info. A zero Timestamp is omitted.
func EncodeErrorInfo(e *jx.Encoder, info ErrorInfo) {
	e.ObjStart()
	if !info.Timestamp.IsZero() {
		e.FieldStart("timestamp")
		e.Str(info.Timestamp.UTC().Format(time.RFC3339Nano))
	}
	e.FieldStart("path")
	e.Str(info.Path)
	e.FieldStart("status")
	e.Int(info.Status)
	if info.Error != "" {
		e.FieldStart("error")
		e.Str(info.Error)
	}
	e.FieldStart("message")
	e.Str(info.Message)
	e.ObjEnd()
}

// DecodeErrorInfo reads an error document. Timestamps that do not parse are
// ignored.
func DecodeErrorInfo(d *jx.Decoder, info *ErrorInfo) error {
	return decodeObj(d, func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "timestamp":
			var s string
			if err := decodeStr(d, &s); err != nil {
				return field("timestamp", err)
			}
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				info.Timestamp = ts
			}
			return nil
		case "path":
			return field("path", decodeStr(d, &info.Path))
		case "status":
			return field("status", decodeInt(d, &info.Status))
		case "error":
			return field("error", decodeStr(d, &info.Error))
		case "message":
			return field("message", decodeStr(d, &info.Message))
		default:
			return d.Skip()
		}
	})
}
