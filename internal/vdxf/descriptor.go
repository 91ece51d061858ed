package vdxf

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"valu/internal/vdxf/codec"
	dErrors "valu/pkg/domain-errors"
)

// DataDescriptor versions.
const (
	DescriptorVersionInvalid = 0
	DescriptorVersionFirst   = 1
	DescriptorVersionLast    = 1
	DescriptorVersionCurrent = 1
)

// DataDescriptor flag bits. Every bit except FlagEncryptedData is derived
// from field presence.
const (
	FlagEncryptedData          uint64 = 1
	FlagSaltPresent            uint64 = 2
	FlagEncryptionPublicKey    uint64 = 4
	FlagIncomingViewingKey     uint64 = 8
	FlagSymmetricEncryptionKey uint64 = 16
	FlagLabelPresent           uint64 = 32
	FlagMimeTypePresent        uint64 = 64

	descriptorFlagMask = FlagEncryptedData | FlagSaltPresent | FlagEncryptionPublicKey |
		FlagIncomingViewingKey | FlagSymmetricEncryptionKey | FlagLabelPresent | FlagMimeTypePresent
)

// MimeTextPlain is the MIME type used for human-readable field values.
const MimeTextPlain = "text/plain"

// DataDescriptor is a versioned, labeled blob whose optional fields are
// announced by flag bits.
type DataDescriptor struct {
	// Version defaults to DescriptorVersionCurrent when nil.
	Version *big.Int
	// Flags holds the last computed flags. Encoders never trust it except
	// for FlagEncryptedData.
	Flags      uint64
	ObjectData []byte
	Label      string
	MimeType   string
	Salt       []byte
	EPK        []byte
	IVK        []byte
	SSK        []byte
}

// DescriptorOption configures a DataDescriptor.
type DescriptorOption func(*DataDescriptor)

// WithLabel sets the label.
func WithLabel(label string) DescriptorOption {
	return func(d *DataDescriptor) { d.Label = label }
}

// WithMimeType sets the MIME type.
func WithMimeType(mime string) DescriptorOption {
	return func(d *DataDescriptor) { d.MimeType = mime }
}

// WithDescriptorVersion overrides the version.
func WithDescriptorVersion(v *big.Int) DescriptorOption {
	return func(d *DataDescriptor) { d.Version = v }
}

// WithEncryption marks the object data as encrypted and attaches the key
// material. Nil slices are left absent.
func WithEncryption(salt, epk, ivk, ssk []byte) DescriptorOption {
	return func(d *DataDescriptor) {
		d.Flags |= FlagEncryptedData
		d.Salt, d.EPK, d.IVK, d.SSK = salt, epk, ivk, ssk
	}
}

// NewDataDescriptor builds a descriptor around objectdata with flags already
// derived from the options.
func NewDataDescriptor(objectdata []byte, opts ...DescriptorOption) *DataDescriptor {
	d := &DataDescriptor{ObjectData: objectdata}
	for _, opt := range opts {
		opt(d)
	}
	d.SetFlags()
	return d
}

// NewTextDescriptor is a text/plain descriptor holding value under label.
func NewTextDescriptor(label, value string) *DataDescriptor {
	return NewDataDescriptor([]byte(value), WithLabel(label), WithMimeType(MimeTextPlain))
}

// ComputeFlags derives the flags from current field presence. It does not
// modify d.
func (d *DataDescriptor) ComputeFlags() uint64 {
	flags := d.Flags & FlagEncryptedData
	if d.Salt != nil {
		flags |= FlagSaltPresent
	}
	if d.EPK != nil {
		flags |= FlagEncryptionPublicKey
	}
	if d.IVK != nil {
		flags |= FlagIncomingViewingKey
	}
	if d.SSK != nil {
		flags |= FlagSymmetricEncryptionKey
	}
	if d.Label != "" {
		flags |= FlagLabelPresent
	}
	if d.MimeType != "" {
		flags |= FlagMimeTypePresent
	}
	return flags
}

// SetFlags stores ComputeFlags in d.Flags.
func (d *DataDescriptor) SetFlags() {
	d.Flags = d.ComputeFlags()
}

// HasFlag reports whether the computed flags include f.
func (d *DataDescriptor) HasFlag(f uint64) bool {
	return d.ComputeFlags()&f == f
}

func (d *DataDescriptor) version() *big.Int {
	if d.Version == nil {
		return big.NewInt(DescriptorVersionCurrent)
	}
	return d.Version
}

// IsValid checks the version bounds.
func (d *DataDescriptor) IsValid() bool {
	v := d.version()
	return v.Cmp(big.NewInt(DescriptorVersionFirst)) >= 0 && v.Cmp(big.NewInt(DescriptorVersionLast)) <= 0
}

// ByteLength is the exact size of MarshalBinary's output.
func (d *DataDescriptor) ByteLength() int {
	flags := d.ComputeFlags()
	n := codec.VarIntLen(d.version()) + codec.VarIntLen(codec.Uint64(flags))
	n += codec.VarSliceLen(d.ObjectData)
	if flags&FlagLabelPresent != 0 {
		n += codec.StringLen(d.Label)
	}
	if flags&FlagMimeTypePresent != 0 {
		n += codec.StringLen(d.MimeType)
	}
	if flags&FlagSaltPresent != 0 {
		n += codec.VarSliceLen(d.Salt)
	}
	if flags&FlagEncryptionPublicKey != 0 {
		n += codec.VarSliceLen(d.EPK)
	}
	if flags&FlagIncomingViewingKey != 0 {
		n += codec.VarSliceLen(d.IVK)
	}
	if flags&FlagSymmetricEncryptionKey != 0 {
		n += codec.VarSliceLen(d.SSK)
	}
	return n
}

// MarshalBinary encodes version, flags, objectdata, then the flagged
// optional fields in bit order label, mimetype, salt, epk, ivk, ssk.
func (d *DataDescriptor) MarshalBinary() ([]byte, error) {
	flags := d.ComputeFlags()
	w := codec.NewWriter(d.ByteLength())
	w.WriteVarInt(d.version())
	w.WriteVarInt(codec.Uint64(flags))
	w.WriteVarSlice(d.ObjectData)
	if flags&FlagLabelPresent != 0 {
		w.WriteString(d.Label)
	}
	if flags&FlagMimeTypePresent != 0 {
		w.WriteString(d.MimeType)
	}
	if flags&FlagSaltPresent != 0 {
		w.WriteVarSlice(d.Salt)
	}
	if flags&FlagEncryptionPublicKey != 0 {
		w.WriteVarSlice(d.EPK)
	}
	if flags&FlagIncomingViewingKey != 0 {
		w.WriteVarSlice(d.IVK)
	}
	if flags&FlagSymmetricEncryptionKey != 0 {
		w.WriteVarSlice(d.SSK)
	}
	return w.Finish()
}

// UnmarshalBinary decodes b, which must hold exactly one descriptor.
func (d *DataDescriptor) UnmarshalBinary(b []byte) error {
	r := codec.NewReader(b)
	decoded, err := ReadDataDescriptor(r)
	if err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("vdxf: %d trailing bytes after descriptor", r.Remaining()))
	}
	*d = *decoded
	return nil
}

// ReadDataDescriptor decodes one descriptor at the reader's cursor.
func ReadDataDescriptor(r *codec.Reader) (*DataDescriptor, error) {
	d := &DataDescriptor{}
	var err error
	if d.Version, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	if d.Flags, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if d.Flags&^descriptorFlagMask != 0 {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("vdxf: unknown descriptor flags %#x", d.Flags))
	}
	if d.ObjectData, err = r.ReadVarSlice(); err != nil {
		return nil, err
	}
	if d.Flags&FlagLabelPresent != 0 {
		if d.Label, err = r.ReadString(); err != nil {
			return nil, err
		}
		if d.Label == "" {
			return nil, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: label flag set with empty label")
		}
	}
	if d.Flags&FlagMimeTypePresent != 0 {
		if d.MimeType, err = r.ReadString(); err != nil {
			return nil, err
		}
		if d.MimeType == "" {
			return nil, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: mimetype flag set with empty mimetype")
		}
	}
	for _, opt := range []struct {
		flag uint64
		dst  *[]byte
	}{
		{FlagSaltPresent, &d.Salt},
		{FlagEncryptionPublicKey, &d.EPK},
		{FlagIncomingViewingKey, &d.IVK},
		{FlagSymmetricEncryptionKey, &d.SSK},
	} {
		if d.Flags&opt.flag == 0 {
			continue
		}
		if *opt.dst, err = r.ReadVarSlice(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type descriptorJSON struct {
	Version    codec.Number    `json:"version"`
	Flags      codec.Number    `json:"flags"`
	ObjectData json.RawMessage `json:"objectdata"`
	Label      string          `json:"label,omitempty"`
	MimeType   string          `json:"mimetype,omitempty"`
	Salt       *string         `json:"salt,omitempty"`
	EPK        *string         `json:"epk,omitempty"`
	IVK        *string         `json:"ivk,omitempty"`
	SSK        *string         `json:"ssk,omitempty"`
}

func optionalHex(b []byte) *string {
	if b == nil {
		return nil
	}
	s := hex.EncodeToString(b)
	return &s
}

// MarshalJSON renders objectdata as hex regardless of MIME type.
func (d *DataDescriptor) MarshalJSON() ([]byte, error) {
	objectdata, err := json.Marshal(hex.EncodeToString(d.ObjectData))
	if err != nil {
		return nil, err
	}
	return MarshalOrdered(descriptorJSON{
		Version:    codec.NumberFrom(d.version()),
		Flags:      codec.NewNumber(d.ComputeFlags()),
		ObjectData: objectdata,
		Label:      d.Label,
		MimeType:   d.MimeType,
		Salt:       optionalHex(d.Salt),
		EPK:        optionalHex(d.EPK),
		IVK:        optionalHex(d.IVK),
		SSK:        optionalHex(d.SSK),
	})
}

// UnmarshalJSON accepts objectdata as a hex string or as an inline JSON
// value, which is stored as its compact encoding. A missing version means
// the current version; flags are recomputed, keeping only the encrypted bit.
func (d *DataDescriptor) UnmarshalJSON(data []byte) error {
	raw := descriptorJSON{Version: codec.NewNumber(DescriptorVersionCurrent)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: descriptor json")
	}
	out := DataDescriptor{
		Version:  raw.Version.Big(),
		Flags:    raw.Flags.Uint64() & FlagEncryptedData,
		Label:    raw.Label,
		MimeType: raw.MimeType,
	}
	objectdata, err := decodeObjectData(raw.ObjectData)
	if err != nil {
		return err
	}
	out.ObjectData = objectdata
	for _, f := range []struct {
		src *string
		dst *[]byte
	}{
		{raw.Salt, &out.Salt}, {raw.EPK, &out.EPK}, {raw.IVK, &out.IVK}, {raw.SSK, &out.SSK},
	} {
		if f.src == nil {
			continue
		}
		b, err := hex.DecodeString(*f.src)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: descriptor key material is not hex")
		}
		*f.dst = b
	}
	out.SetFlags()
	*d = out
	return nil
}

func decodeObjectData(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []byte{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: objectdata")
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: objectdata is not hex")
		}
		return b, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: objectdata")
	}
	return buf.Bytes(), nil
}
