package vdxf

import (
	"bytes"
	"encoding/json"
	"io"

	dErrors "valu/pkg/domain-errors"
)

// MarshalOrdered encodes v compactly without HTML escaping and without a
// trailing newline. Struct field order is preserved.
func MarshalOrdered(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Member is one key of an Object.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Object is a JSON object whose key order is significant.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (json.RawMessage, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place or appends a new key.
func (o *Object) Set(key string, value any) error {
	raw, err := rawValue(value)
	if err != nil {
		return err
	}
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = raw
			return nil
		}
	}
	*o = append(*o, Member{Key: key, Value: raw})
	return nil
}

// Merge overlays other onto o: existing keys keep their position and take
// the new value, unknown keys are appended in other's order.
func (o *Object) Merge(other Object) {
	for _, m := range other {
		_ = o.Set(m.Key, m.Value)
	}
}

// Keys lists the keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := MarshalOrdered(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(m.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		if err := json.Compact(&buf, m.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	members, err := ReadObject(data)
	if err != nil {
		return err
	}
	*o = members
	return nil
}

// ReadObject parses a JSON object keeping key order. Duplicate keys are kept
// as separate members.
func ReadObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: json object")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "vdxf: expected json object")
	}
	out := Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: json object key")
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: json value for "+key)
		}
		out = append(out, Member{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: json object end")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "vdxf: trailing data after json object")
	}
	return out, nil
}

func rawValue(v any) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: json value")
		}
		return buf.Bytes(), nil
	}
	b, err := MarshalOrdered(v)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: json value")
	}
	return b, nil
}
