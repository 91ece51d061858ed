package vdxf

import (
	"encoding/json"
	"fmt"

	"valu/internal/vdxf/codec"
	dErrors "valu/pkg/domain-errors"
)

// MultiMapEntry is one key of a ContentMultiMap with its values in order.
type MultiMapEntry struct {
	Key    Identifier
	Values []*UniValue
}

// ContentMultiMap maps identifiers to ordered lists of unions. Keys keep
// their first-insertion order.
type ContentMultiMap struct {
	Entries []MultiMapEntry
}

// NewContentMultiMap returns an empty map.
func NewContentMultiMap() *ContentMultiMap {
	return &ContentMultiMap{}
}

// Add appends values under key.
func (m *ContentMultiMap) Add(key Identifier, values ...*UniValue) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries[i].Values = append(m.Entries[i].Values, values...)
			return
		}
	}
	m.Entries = append(m.Entries, MultiMapEntry{Key: key, Values: append([]*UniValue(nil), values...)})
}

// Get returns the values stored under key.
func (m *ContentMultiMap) Get(key Identifier) []*UniValue {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Values
		}
	}
	return nil
}

// Keys returns the keys in order.
func (m *ContentMultiMap) Keys() []Identifier {
	keys := make([]Identifier, len(m.Entries))
	for i, e := range m.Entries {
		keys[i] = e.Key
	}
	return keys
}

// ByteLength is the exact size of MarshalBinary's output.
func (m *ContentMultiMap) ByteLength() int {
	n := codec.CompactSizeLen(uint64(len(m.Entries)))
	for _, e := range m.Entries {
		n += IdentifierLen + codec.CompactSizeLen(uint64(len(e.Values)))
		for _, v := range e.Values {
			l := v.ByteLength()
			n += codec.CompactSizeLen(uint64(l)) + l
		}
	}
	return n
}

// MarshalBinary writes the key count, then per key the identifier, the
// value count and each union as a VarSlice.
func (m *ContentMultiMap) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter(m.ByteLength())
	w.WriteCompactSize(uint64(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteSlice(e.Key[:])
		w.WriteCompactSize(uint64(len(e.Values)))
		for _, v := range e.Values {
			b, err := v.MarshalBinary()
			if err != nil {
				return nil, err
			}
			w.WriteVarSlice(b)
		}
	}
	return w.Finish()
}

// DecodeContentMultiMap decodes b completely.
func DecodeContentMultiMap(b []byte, reg *Registry) (*ContentMultiMap, error) {
	r := codec.NewReader(b)
	m, err := ReadContentMultiMap(r, reg)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("vdxf: %d trailing bytes after multimap", r.Remaining()))
	}
	return m, nil
}

// ReadContentMultiMap decodes one multimap at the reader's cursor.
func ReadContentMultiMap(r *codec.Reader, reg *Registry) (*ContentMultiMap, error) {
	keys, err := readCount(r, IdentifierLen+1)
	if err != nil {
		return nil, err
	}
	m := &ContentMultiMap{}
	for i := 0; i < keys; i++ {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		count, err := readCount(r, 1)
		if err != nil {
			return nil, err
		}
		values := make([]*UniValue, 0, count)
		for j := 0; j < count; j++ {
			raw, err := r.ReadVarSlice()
			if err != nil {
				return nil, err
			}
			u, err := DecodeUniValue(raw, reg)
			if err != nil {
				return nil, err
			}
			values = append(values, u)
		}
		m.Add(id, values...)
	}
	return m, nil
}

// MarshalJSON renders {"<key>": [univalue, ...]} in key order.
func (m *ContentMultiMap) MarshalJSON() ([]byte, error) {
	obj := make(Object, 0, len(m.Entries))
	for _, e := range m.Entries {
		raw, err := MarshalOrdered(e.Values)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: e.Key.String(), Value: raw})
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON parses against DefaultRegistry.
func (m *ContentMultiMap) UnmarshalJSON(data []byte) error {
	parsed, err := ParseContentMultiMapJSON(data, DefaultRegistry)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// ParseContentMultiMapJSON parses the object form.
func ParseContentMultiMapJSON(data []byte, reg *Registry) (*ContentMultiMap, error) {
	obj, err := ReadObject(data)
	if err != nil {
		return nil, err
	}
	m := &ContentMultiMap{}
	for _, member := range obj {
		id, err := reg.Resolve(member.Key)
		if err != nil {
			return nil, err
		}
		var items []json.RawMessage
		if err := json.Unmarshal(member.Value, &items); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: multimap values for "+member.Key)
		}
		for _, item := range items {
			u, err := ParseUniValueJSON(item, reg)
			if err != nil {
				return nil, err
			}
			m.Add(id, u)
		}
	}
	return m, nil
}
