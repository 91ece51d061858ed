package claim

import (
	"encoding/json"
	"io"

	"valu/internal/vdxf"
	"valu/internal/vdxf/codec"
	"valu/pkg/domain"
	dErrors "valu/pkg/domain-errors"
)

// versionObjectData is the payload of the descriptor that opens every claim.
var versionObjectData = []byte{0x01}

// Claim is a typed record stored as an ordered sequence of single-entry
// unions, each holding one labeled DataDescriptor. The first entry is always
// the version descriptor.
type Claim struct {
	Type Type
	Data []*vdxf.UniValue

	mapping Mapping
	order   FieldOrder
	random  io.Reader
}

// Option configures a Claim.
type Option func(*Claim)

// WithMapping selects the type-to-identifier mapping. Defaults to current.
func WithMapping(m Mapping) Option {
	return func(c *Claim) { c.mapping = m }
}

// WithFieldOrder selects where CreateClaimData puts referenceID.
func WithFieldOrder(o FieldOrder) Option {
	return func(c *Claim) { c.order = o }
}

// WithRandom sets the source used for default reference ids.
func WithRandom(r io.Reader) Option {
	return func(c *Claim) { c.random = r }
}

// New returns a claim of type t seeded with the version descriptor.
func New(t Type, opts ...Option) *Claim {
	c := newClaim(t, opts)
	version := vdxf.NewDataDescriptor(versionObjectData, vdxf.WithLabel(LabelVersion))
	c.AppendDataDescriptor(version)
	return c
}

// FromData wraps existing unions without seeding anything.
func FromData(t Type, data []*vdxf.UniValue, opts ...Option) *Claim {
	c := newClaim(t, opts)
	c.Data = data
	return c
}

func newClaim(t Type, opts []Option) *Claim {
	c := &Claim{Type: t, mapping: MappingCurrent, order: ReferenceLast}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mapping returns the type mapping in use.
func (c *Claim) Mapping() Mapping { return c.mapping }

// AppendDataDescriptor appends d as a new single-entry union.
func (c *Claim) AppendDataDescriptor(d *vdxf.DataDescriptor) {
	u := vdxf.NewUniValue()
	u.AppendDescriptor(d)
	c.Data = append(c.Data, u)
}

// CreateClaimData appends the type descriptor, the fields and the reference
// id. Nothing is appended unless every check passes.
func (c *Claim) CreateClaimData(f Fields) error {
	if _, err := c.Vdxfid(); err != nil {
		return err
	}
	validate, fields := f.validate, f.ordered()
	if c.order == ReferenceFirst {
		validate, fields = f.validateLabels, f.supplied()
	}
	if err := validate(); err != nil {
		return err
	}
	ref, err := c.referenceID(f.ReferenceID)
	if err != nil {
		return err
	}

	typeDesc, err := messageDescriptor(LabelType, string(c.Type))
	if err != nil {
		return err
	}
	refDesc, err := referenceDescriptor(ref)
	if err != nil {
		return err
	}
	descs := make([]*vdxf.DataDescriptor, 0, len(fields)+2)
	descs = append(descs, typeDesc)
	if c.order == ReferenceFirst {
		descs = append(descs, refDesc)
	}
	for _, field := range fields {
		value := field.Value
		if value == "" && c.order == ReferenceFirst {
			value = " "
		}
		d, err := messageDescriptor(field.Label, value)
		if err != nil {
			return err
		}
		descs = append(descs, d)
	}
	if c.order != ReferenceFirst {
		descs = append(descs, refDesc)
	}

	for _, d := range descs {
		c.AppendDataDescriptor(d)
	}
	return nil
}

func (c *Claim) referenceID(s string) (domain.ReferenceID, error) {
	return parseOrNewReference(s, c.random)
}

func parseOrNewReference(s string, random io.Reader) (domain.ReferenceID, error) {
	if s == "" {
		return domain.NewReferenceID(random)
	}
	return domain.ParseReferenceID(s)
}

func referenceDescriptor(ref domain.ReferenceID) (*vdxf.DataDescriptor, error) {
	b, err := vdxf.MarshalOrdered(vdxf.NewSerializedHex(ref.Bytes()))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode reference id")
	}
	return vdxf.NewDataDescriptor(b, vdxf.WithLabel(LabelReferenceID)), nil
}

// Vdxfid resolves the claim's type under its mapping.
func (c *Claim) Vdxfid() (vdxf.Identifier, error) {
	return TypeToVdxfid(c.Type, c.mapping)
}

// ToIdentityUpdateJSON places every union under the claim's type identifier.
func (c *Claim) ToIdentityUpdateJSON() (*vdxf.IdentityUpdate, error) {
	id, err := c.Vdxfid()
	if err != nil {
		return nil, err
	}
	items := make([]any, len(c.Data))
	for i, u := range c.Data {
		items[i] = u
	}
	update := vdxf.NewIdentityUpdate()
	if err := update.Add(id, items...); err != nil {
		return nil, err
	}
	return update, nil
}

// ByteLength is the exact size of MarshalBinary's output.
func (c *Claim) ByteLength() int {
	n := 0
	for _, u := range c.Data {
		n += u.ByteLength()
	}
	return n
}

// MarshalBinary concatenates the encoded unions.
func (c *Claim) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter(c.ByteLength())
	for _, u := range c.Data {
		b, err := u.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.WriteSlice(b)
	}
	return w.Finish()
}

// DecodeClaim splits b into one union per entry.
func DecodeClaim(t Type, b []byte, reg *vdxf.Registry, opts ...Option) (*Claim, error) {
	u, err := vdxf.DecodeUniValue(b, reg)
	if err != nil {
		return nil, err
	}
	data := make([]*vdxf.UniValue, len(u.Entries))
	for i, e := range u.Entries {
		data[i] = &vdxf.UniValue{Entries: []vdxf.Entry{e}}
	}
	return FromData(t, data, opts...), nil
}

// Descriptor returns the first descriptor labeled label.
func (c *Claim) Descriptor(label string) (*vdxf.DataDescriptor, bool) {
	for _, u := range c.Data {
		for _, d := range u.Descriptors() {
			if d.Label == label {
				return d, true
			}
		}
	}
	return nil, false
}

// Field returns the message stored under label.
func (c *Claim) Field(label string) (string, bool, error) {
	d, ok := c.Descriptor(label)
	if !ok {
		return "", false, nil
	}
	var m message
	if err := json.Unmarshal(d.ObjectData, &m); err != nil {
		return "", true, dErrors.Wrap(err, dErrors.CodeMalformedBuffer, "claim field "+label)
	}
	return m.Message, true, nil
}

// ReferenceID reads the reference id descriptor.
func (c *Claim) ReferenceID() (domain.ReferenceID, error) {
	d, ok := c.Descriptor(LabelReferenceID)
	if !ok {
		return domain.ReferenceID{}, dErrors.New(dErrors.CodeMissingRequiredField, "claim has no reference id")
	}
	var s vdxf.SerializedHex
	if err := json.Unmarshal(d.ObjectData, &s); err != nil {
		return domain.ReferenceID{}, dErrors.Wrap(err, dErrors.CodeMalformedBuffer, "claim reference id")
	}
	return domain.ParseReferenceID(s.SerializedHex)
}
