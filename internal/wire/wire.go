// Package wire contains the JSON codecs shared by the backend clients and the
// upstream HTTP handlers.
//
// Decoders are lenient inside a document: unknown fields are skipped and null
// values leave the target field at its zero value. The document itself must be
// a single value, and record documents must be objects.
package wire

import (
	"io"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Encode runs fn against a pooled encoder and returns a copy of the result.
func Encode(fn func(e *jx.Encoder)) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	fn(e)
	return append([]byte(nil), e.Bytes()...)
}

// Decode runs fn against a decoder reading data. Anything but whitespace
// after the value read by fn is an error.
func Decode(data []byte, fn func(d *jx.Decoder) error) error {
	if len(data) == 0 {
		return errors.New("empty body")
	}
	d := jx.DecodeBytes(data)
	if err := fn(d); err != nil {
		return err
	}
	if err := d.Skip(); err != io.EOF {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func decodeInt(d *jx.Decoder, v *int) error {
	switch d.Next() {
	case jx.Null:
		return d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "parse %q", s)
		}
		*v = n
		return nil
	default:
		n, err := d.Int()
		if err != nil {
			return err
		}
		*v = n
		return nil
	}
}

func decodeStr(d *jx.Decoder, v *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	*v = s
	return nil
}

func decodeArr(d *jx.Decoder, fn func(d *jx.Decoder) error) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Arr(fn)
}

func decodeObj(d *jx.Decoder, fn func(d *jx.Decoder, key []byte) error) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.ObjBytes(fn)
}

// decodeDocument reads a top-level record. Unlike decodeObj it rejects null.
func decodeDocument(d *jx.Decoder, fn func(d *jx.Decoder, key []byte) error) error {
	if tt := d.Next(); tt != jx.Object {
		return errors.Errorf("expected object, got %s", tt)
	}
	return d.ObjBytes(fn)
}

func field(name string, err error) error {
	if err != nil {
		return errors.Wrapf(err, "decode field %q", name)
	}
	return nil
}
