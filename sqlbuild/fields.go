package sqlbuild

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/Skryldev/jobly/apperr"
)

// Field is one key/value pair of an update request.
type Field struct {
	Key   string
	Value any
}

// Fields is an update request in caller-controlled order. Placeholder
// numbering follows this order, so it is kept as a slice rather than a map.
type Fields []Field

// F builds Fields from alternating key, value arguments. It panics on an odd
// argument count or a non-string key; it is meant for literals in code.
func F(kv ...any) Fields {
	if len(kv)%2 != 0 {
		panic("sqlbuild: F needs key/value pairs")
	}
	fs := make(Fields, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fs = fs.Set(kv[i].(string), kv[i+1])
	}
	return fs
}

// Get returns the value stored under key.
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place or appends a new one.
func (fs Fields) Set(key string, value any) Fields {
	for i := range fs {
		if fs[i].Key == key {
			fs[i].Value = value
			return fs
		}
	}
	return append(fs, Field{Key: key, Value: value})
}

// Keys returns the keys in order.
func (fs Fields) Keys() []string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}

var errNotObject = apperr.BadRequest("request body must be a JSON object")

// ParseFields decodes a JSON object into Fields, keeping the key order of the
// document. Integral numbers decode to int64, other numbers to float64.
// A repeated key keeps its first position and its last value.
func ParseFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errNotObject
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	fs := Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrBadRequest, err, "malformed JSON body")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, apperr.Wrap(apperr.ErrBadRequest, err, "malformed JSON body")
		}
		fs = fs.Set(key, normalize(raw))
	}

	// closing brace, then nothing else
	if _, err := dec.Token(); err != nil {
		return nil, apperr.Wrap(apperr.ErrBadRequest, err, "malformed JSON body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.BadRequest("malformed JSON body")
	}
	return fs, nil
}

func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
