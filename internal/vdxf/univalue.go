package vdxf

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"unicode/utf8"

	"valu/internal/vdxf/codec"
	dErrors "valu/pkg/domain-errors"
)

// UniValueEntryVersion is the only entry version written or accepted.
const UniValueEntryVersion = 1

// Payload is the closed set of values a UniValue entry can hold:
// StringValue, BytesValue, *DataDescriptor, *UniValue and *SignatureData.
type Payload interface {
	payloadKind() Kind
	ByteLength() int
	MarshalBinary() ([]byte, error)
}

// StringValue is a UTF-8 string payload.
type StringValue string

// BytesValue is a raw byte payload.
type BytesValue []byte

func (StringValue) payloadKind() Kind { return KindString }
func (BytesValue) payloadKind() Kind { return KindBytes }
func (*DataDescriptor) payloadKind() Kind { return KindDataDescriptor }
func (*UniValue) payloadKind() Kind { return KindNested }
func (*SignatureData) payloadKind() Kind { return KindSignature }
func (v StringValue) ByteLength() int { return codec.StringLen(string(v)) }
func (v BytesValue) ByteLength() int { return codec.VarSliceLen(v) }

func (v StringValue) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter(v.ByteLength())
	w.WriteString(string(v))
	return w.Finish()
}

func (v BytesValue) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter(v.ByteLength())
	w.WriteVarSlice(v)
	return w.Finish()
}

// Entry is one key/payload pair.
type Entry struct {
	Key   Identifier
	Value Payload
}

func (e Entry) byteLength() int {
	pl := e.Value.ByteLength()
	return IdentifierLen + codec.VarIntLen(big.NewInt(UniValueEntryVersion)) + codec.CompactSizeLen(uint64(pl)) + pl
}

// UniValue is an ordered sequence of single-key entries. Duplicate keys are
// allowed and keep their positions.
type UniValue struct {
	Entries []Entry
}

// NewUniValue returns an empty union.
func NewUniValue() *UniValue {
	return &UniValue{}
}

// Append adds payload under key. The key's registered kind must match the
// payload kind.
func (u *UniValue) Append(key Key, payload Payload) error {
	if payload == nil {
		return dErrors.New(dErrors.CodeMissingRequiredField, "vdxf: nil payload for "+key.Name)
	}
	if key.Kind != payload.payloadKind() {
		return dErrors.New(dErrors.CodeUnsupportedType,
			fmt.Sprintf("vdxf: key %s holds %s, not %s", key.ID, key.Kind, payload.payloadKind()))
	}
	if sv, ok := payload.(StringValue); ok && !utf8.ValidString(string(sv)) {
		return dErrors.New(dErrors.CodeInvalidInput, "vdxf: string payload for "+key.Name+" is not valid UTF-8")
	}
	u.Entries = append(u.Entries, Entry{Key: key.ID, Value: payload})
	return nil
}

// AppendDescriptor adds d under DataDescriptorKey.
func (u *UniValue) AppendDescriptor(d *DataDescriptor) {
	u.Entries = append(u.Entries, Entry{Key: DataDescriptorKey.ID, Value: d})
}

// Len returns the number of entries.
func (u *UniValue) Len() int {
	return len(u.Entries)
}

// Descriptors returns the DataDescriptor payloads in order.
func (u *UniValue) Descriptors() []*DataDescriptor {
	var out []*DataDescriptor
	for _, e := range u.Entries {
		if d, ok := e.Value.(*DataDescriptor); ok {
			out = append(out, d)
		}
	}
	return out
}

// ByteLength is the exact size of MarshalBinary's output.
func (u *UniValue) ByteLength() int {
	n := 0
	for _, e := range u.Entries {
		n += e.byteLength()
	}
	return n
}

// MarshalBinary writes each entry as key, entry version, payload length and
// payload.
func (u *UniValue) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter(u.ByteLength())
	version := big.NewInt(UniValueEntryVersion)
	for _, e := range u.Entries {
		payload, err := e.Value.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.WriteSlice(e.Key[:])
		w.WriteVarInt(version)
		w.WriteVarSlice(payload)
	}
	return w.Finish()
}

// DecodeUniValue decodes b completely using reg to select payload decoders.
func DecodeUniValue(b []byte, reg *Registry) (*UniValue, error) {
	u, used, err := decodeUniValue(b, reg, false)
	if err != nil {
		return nil, err
	}
	if used != len(b) {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: trailing bytes after univalue")
	}
	return u, nil
}

// DecodeUniValuePrefix decodes entries until the buffer ends or the next 20
// bytes are not a registered payload key. It returns the union and the bytes
// consumed, so a caller can continue with whatever follows.
func DecodeUniValuePrefix(b []byte, reg *Registry) (*UniValue, int, error) {
	return decodeUniValue(b, reg, true)
}

func decodeUniValue(b []byte, reg *Registry, prefix bool) (*UniValue, int, error) {
	r := codec.NewReader(b)
	u := &UniValue{}
	for r.Remaining() > 0 {
		start := r.Offset()
		if prefix {
			head, err := r.Peek(IdentifierLen)
			if err != nil {
				return u, start, nil
			}
			id, _ := IdentifierFromBytes(head)
			if reg.KindOf(id) == KindNone {
				return u, start, nil
			}
		}
		e, err := readEntry(r, reg)
		if err != nil {
			return nil, 0, err
		}
		u.Entries = append(u.Entries, e)
	}
	return u, r.Offset(), nil
}

func readEntry(r *codec.Reader, reg *Registry) (Entry, error) {
	id, err := readIdentifier(r)
	if err != nil {
		return Entry{}, err
	}
	kind := reg.KindOf(id)
	if kind == KindNone {
		return Entry{}, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: unregistered univalue key "+id.String())
	}
	version, err := r.ReadVarInt()
	if err != nil {
		return Entry{}, err
	}
	if version.Cmp(big.NewInt(UniValueEntryVersion)) != 0 {
		return Entry{}, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: unsupported univalue entry version "+version.String())
	}
	payload, err := r.ReadVarSlice()
	if err != nil {
		return Entry{}, err
	}
	value, err := decodePayload(kind, payload, reg)
	if err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeMalformedBuffer, "vdxf: payload for "+id.String())
	}
	return Entry{Key: id, Value: value}, nil
}

func decodePayload(kind Kind, b []byte, reg *Registry) (Payload, error) {
	r := codec.NewReader(b)
	var (
		value Payload
		err   error
	)
	switch kind {
	case KindString:
		var s string
		s, err = r.ReadString()
		value = StringValue(s)
	case KindBytes:
		var raw []byte
		raw, err = r.ReadVarSlice()
		value = BytesValue(raw)
	case KindDataDescriptor:
		value, err = ReadDataDescriptor(r)
	case KindSignature:
		value, err = ReadSignatureData(r)
	case KindNested:
		return DecodeUniValue(b, reg)
	default:
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: no decoder for kind "+kind.String())
	}
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("vdxf: %s payload has %d trailing bytes", kind, r.Remaining()))
	}
	return value, nil
}

// MarshalJSON renders [{"<key>": payload}, ...]. Bytes payloads are hex.
// A decoded string payload that is not valid UTF-8 has no exact JSON form
// and is rejected.
func (u *UniValue) MarshalJSON() ([]byte, error) {
	items := make([]Object, 0, len(u.Entries))
	for _, e := range u.Entries {
		var v any
		switch p := e.Value.(type) {
		case StringValue:
			if !utf8.ValidString(string(p)) {
				return nil, dErrors.New(dErrors.CodeInvalidInput, "vdxf: string payload under "+e.Key.String()+" is not valid UTF-8")
			}
			v = string(p)
		case BytesValue:
			v = hex.EncodeToString(p)
		default:
			v = p
		}
		raw, err := MarshalOrdered(v)
		if err != nil {
			return nil, err
		}
		items = append(items, Object{{Key: e.Key.String(), Value: raw}})
	}
	return MarshalOrdered(items)
}

// UnmarshalJSON parses against DefaultRegistry.
func (u *UniValue) UnmarshalJSON(data []byte) error {
	parsed, err := ParseUniValueJSON(data, DefaultRegistry)
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}

// ParseUniValueJSON parses the array form. Each object must hold exactly one
// registered payload key.
func ParseUniValueJSON(data []byte, reg *Registry) (*UniValue, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: univalue json must be an array")
	}
	u := &UniValue{}
	for i, item := range items {
		obj, err := ReadObject(item)
		if err != nil {
			return nil, err
		}
		if len(obj) != 1 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("vdxf: univalue item %d must have exactly one key", i))
		}
		id, err := reg.Resolve(obj[0].Key)
		if err != nil {
			return nil, err
		}
		key, ok := reg.Lookup(id)
		if !ok || key.Kind == KindNone {
			return nil, dErrors.New(dErrors.CodeUnsupportedType, "vdxf: unregistered univalue key "+obj[0].Key)
		}
		value, err := payloadFromJSON(key.Kind, obj[0].Value, reg)
		if err != nil {
			return nil, err
		}
		u.Entries = append(u.Entries, Entry{Key: id, Value: value})
	}
	return u, nil
}

func payloadFromJSON(kind Kind, raw json.RawMessage, reg *Registry) (Payload, error) {
	switch kind {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: string payload")
		}
		return StringValue(s), nil
	case KindBytes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: bytes payload")
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: bytes payload is not hex")
		}
		return BytesValue(b), nil
	case KindDataDescriptor:
		d := &DataDescriptor{}
		if err := d.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return d, nil
	case KindSignature:
		s := &SignatureData{}
		if err := s.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return s, nil
	case KindNested:
		return ParseUniValueJSON(bytes.TrimSpace(raw), reg)
	default:
		return nil, dErrors.New(dErrors.CodeUnsupportedType, "vdxf: no payload for kind "+kind.String())
	}
}
