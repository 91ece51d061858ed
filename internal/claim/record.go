package claim

import (
	"io"
	"math/big"

	"valu/internal/vdxf"
	"valu/internal/vdxf/codec"
	dErrors "valu/pkg/domain-errors"
)

// Record versions.
const (
	RecordVersionInvalid = 0
	RecordVersionFirst   = 1
	RecordVersionLast    = 1
	RecordVersionCurrent = 1
)

// LabelReceivingIdentity labels the optional recipient leaf of a record's
// MMR export.
const LabelReceivingIdentity = "receiving_identity"

// Record is a claim stored as one JSON document:
// version, flags, type, varslice(document).
type Record struct {
	Version *big.Int
	Flags   uint64
	Type    Type
	Data    vdxf.Object

	format  Format
	mapping Mapping
}

// RecordOption configures a Record.
type RecordOption func(*Record)

// Tagged writes the type as its numeric tag instead of the 20-byte identifier.
func Tagged() RecordOption {
	return func(r *Record) { r.format = FormatDocumentTagged }
}

// WithRecordMapping selects the mapping used for identifier-typed records.
func WithRecordMapping(m Mapping) RecordOption {
	return func(r *Record) { r.mapping = m }
}

// NewRecord returns a current-version record holding data.
func NewRecord(t Type, data vdxf.Object, opts ...RecordOption) *Record {
	r := &Record{
		Version: big.NewInt(RecordVersionCurrent),
		Type:    t,
		Data:    data,
		format:  FormatDocument,
		mapping: MappingCurrent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Format reports how the type is written.
func (r *Record) Format() Format { return r.format }

// SetData overlays data onto the document. Existing keys keep their place.
func (r *Record) SetData(data vdxf.Object) {
	r.Data.Merge(data)
}

// IsValid checks the version bounds.
func (r *Record) IsValid() bool {
	v := r.version()
	return v.Cmp(big.NewInt(RecordVersionFirst)) >= 0 && v.Cmp(big.NewInt(RecordVersionLast)) <= 0
}

func (r *Record) version() *big.Int {
	if r.Version == nil {
		return big.NewInt(RecordVersionCurrent)
	}
	return r.Version
}

func (r *Record) encodedType() ([]byte, error) {
	if r.format == FormatDocumentTagged {
		tag, err := r.Type.Tag()
		if err != nil {
			return nil, err
		}
		return codec.EncodeVarInt(codec.Uint64(tag)), nil
	}
	id, err := TypeToVdxfid(r.Type, r.mapping)
	if err != nil {
		return nil, err
	}
	return id[:], nil
}

func (r *Record) document() ([]byte, error) {
	b, err := r.Data.MarshalJSON()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "record document")
	}
	return b, nil
}

// ByteLength is the exact size of MarshalBinary's output. It is zero when
// the record cannot be encoded.
func (r *Record) ByteLength() int {
	typ, err := r.encodedType()
	if err != nil {
		return 0
	}
	doc, err := r.document()
	if err != nil {
		return 0
	}
	return codec.VarIntLen(r.version()) + codec.VarIntLen(codec.Uint64(r.Flags)) + len(typ) + codec.VarSliceLen(doc)
}

func (r *Record) MarshalBinary() ([]byte, error) {
	typ, err := r.encodedType()
	if err != nil {
		return nil, err
	}
	doc, err := r.document()
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter(r.ByteLength())
	w.WriteVarInt(r.version())
	w.WriteVarInt(codec.Uint64(r.Flags))
	w.WriteSlice(typ)
	w.WriteVarSlice(doc)
	return w.Finish()
}

// DecodeRecord reads a record written in format f. b must hold exactly one
// record.
func DecodeRecord(b []byte, f Format, m Mapping) (*Record, error) {
	if f != FormatDocument && f != FormatDocumentTagged {
		return nil, dErrors.New(dErrors.CodeUnsupportedType, "not a document format: "+string(f))
	}
	rd := codec.NewReader(b)
	r := &Record{format: f, mapping: m}
	var err error
	if r.Version, err = rd.ReadVarInt(); err != nil {
		return nil, err
	}
	if r.Flags, err = rd.ReadUint64(); err != nil {
		return nil, err
	}
	if f == FormatDocumentTagged {
		tag, err := rd.ReadUint64()
		if err != nil {
			return nil, err
		}
		if r.Type, err = TypeFromTag(tag); err != nil {
			return nil, err
		}
	} else {
		raw, err := rd.ReadSlice(vdxf.IdentifierLen)
		if err != nil {
			return nil, err
		}
		id, _ := vdxf.IdentifierFromBytes(raw)
		if r.Type, err = TypeFromVdxfid(id, m); err != nil {
			return nil, err
		}
	}
	doc, err := rd.ReadVarSlice()
	if err != nil {
		return nil, err
	}
	if r.Data, err = vdxf.ReadObject(doc); err != nil {
		return nil, &dErrors.Error{Code: dErrors.CodeMalformedBuffer, Message: "record document is not a json object", Err: err}
	}
	if rd.Remaining() != 0 {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, "trailing bytes after record")
	}
	return r, nil
}

// descriptor wraps the encoded record in a descriptor with the given label.
func (r *Record) descriptor(opts ...vdxf.DescriptorOption) (*vdxf.DataDescriptor, error) {
	if r.Type == "" {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "claim type is required")
	}
	b, err := r.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return vdxf.NewDataDescriptor(b, opts...), nil
}

// ToIdentityUpdateJSON wraps the record in an unlabeled descriptor under
// the generic claim key.
func (r *Record) ToIdentityUpdateJSON() (*vdxf.IdentityUpdate, error) {
	d, err := r.descriptor()
	if err != nil {
		return nil, err
	}
	b, err := d.MarshalBinary()
	if err != nil {
		return nil, err
	}
	update := vdxf.NewIdentityUpdate()
	if err := update.AddSerialized(vdxf.ClaimKey.ID, b); err != nil {
		return nil, err
	}
	return update, nil
}

// ToMMRData exports the record labeled with the generic claim key, followed
// by the receiving identity when one is given.
func (r *Record) ToMMRData(receivingIdentity string) (vdxf.MMRData, error) {
	d, err := r.descriptor(vdxf.WithLabel(vdxf.ClaimKey.ID.String()))
	if err != nil {
		return nil, err
	}
	leaves := []*vdxf.DataDescriptor{d}
	if receivingIdentity != "" {
		leaves = append(leaves, vdxf.NewTextDescriptor(LabelReceivingIdentity, receivingIdentity))
	}
	return vdxf.NewMMRData(leaves...), nil
}

// RecordFromFields builds a document record holding the ordered fields and
// their reference id. An empty ReferenceID is drawn from random, or from
// crypto/rand when random is nil.
func RecordFromFields(t Type, f Fields, random io.Reader, opts ...RecordOption) (*Record, error) {
	if t == "" {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "claim type is required")
	}
	r := NewRecord(t, nil, opts...)
	if _, err := r.encodedType(); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	ref, err := parseOrNewReference(f.ReferenceID, random)
	if err != nil {
		return nil, err
	}
	doc := vdxf.Object{}
	for _, field := range f.ordered() {
		if err := doc.Set(field.Label, field.Value); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode record field "+field.Label)
		}
	}
	if err := doc.Set(LabelReferenceID, ref.String()); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode record reference id")
	}
	r.Data = doc
	return r, nil
}
