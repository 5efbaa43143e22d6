package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope mirrors the {ok, result|description} wrapper every Bot API
// response uses. Result is kept raw; the caller decodes it into the
// method-specific shape.
type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
}

// DecodeEnvelope unwraps a Bot API response body. ok:true yields the raw
// result field unchanged; ok:false (or an unparseable body) yields a failure
// carrying the description string, defaulting to "" when the description is
// itself absent or malformed.
func DecodeEnvelope(body []byte) Result[json.RawMessage] {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Fail[json.RawMessage](&APIError{})
	}
	if !env.OK {
		var desc string
		// Malformed description degrades to the empty string, not an error.
		_ = json.Unmarshal(env.Description, &desc)
		return Fail[json.RawMessage](&APIError{Description: desc})
	}
	return Ok(env.Result)
}

// DecodeAs decodes the raw result field of a successful envelope into T.
// Failures pass through unchanged; a result that does not match T becomes
// a *DecodeError failure.
func DecodeAs[T any](r Result[json.RawMessage]) Result[T] {
	if !r.OK() {
		return Fail[T](r.Err())
	}
	var v T
	if err := json.Unmarshal(r.Value(), &v); err != nil {
		return Fail[T](&DecodeError{Expected: fmt.Sprintf("%T", v), Cause: err})
	}
	return Ok(v)
}

// Field is one key/value pair of a request object. Optional fields whose
// value is absent are dropped entirely: the wire convention is omission,
// never null.
type Field struct {
	Key   string
	Value any
	omit  bool
}

// Req builds an always-present field.
func Req(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Opt builds a field that is present only when ptr is non-nil.
func Opt[T any](key string, ptr *T) Field {
	if ptr == nil {
		return Field{Key: key, omit: true}
	}
	return Field{Key: key, Value: *ptr}
}

// OptIf builds a field that is present only when present is true. It covers
// optional values that are held by value rather than behind a pointer.
func OptIf(key string, value any, present bool) Field {
	return Field{Key: key, Value: value, omit: !present}
}

// Object assembles a JSON object from the given fields, preserving their
// declared order. Call sites list required fields first, then optional ones.
func Object(fields ...Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range fields {
		if f.omit {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("wire: marshal key %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("wire: marshal field %q: %w", f.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
