package claim

import (
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// StoreMultipleClaims packs each claim into a descriptor labeled with its own
// type identifier and files them all under the generic claim key.
func StoreMultipleClaims(claims []*Claim) (*vdxf.ContentMultiMap, error) {
	values := make([]*vdxf.UniValue, 0, len(claims))
	for _, c := range claims {
		id, err := c.Vdxfid()
		if err != nil {
			return nil, err
		}
		b, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		u := vdxf.NewUniValue()
		u.AppendDescriptor(vdxf.NewDataDescriptor(b, vdxf.WithLabel(id.String())))
		values = append(values, u)
	}
	m := vdxf.NewContentMultiMap()
	m.Add(vdxf.ClaimKey.ID, values...)
	return m, nil
}

// StoreMultipleRecords packs each record into a descriptor labeled with the
// generic claim key and files them under that key.
func StoreMultipleRecords(records []*Record) (*vdxf.ContentMultiMap, error) {
	values := make([]*vdxf.UniValue, 0, len(records))
	for _, r := range records {
		d, err := r.descriptor(vdxf.WithLabel(vdxf.ClaimKey.ID.String()))
		if err != nil {
			return nil, err
		}
		u := vdxf.NewUniValue()
		u.AppendDescriptor(d)
		values = append(values, u)
	}
	m := vdxf.NewContentMultiMap()
	m.Add(vdxf.ClaimKey.ID, values...)
	return m, nil
}

// Stored is one entry recovered from the claim key. Exactly one of Claim and
// Record is set.
type Stored struct {
	Claim  *Claim
	Record *Record
}

// Format reports which encoding the entry used.
func (s Stored) Format() Format {
	if s.Record != nil {
		return s.Record.Format()
	}
	return FormatDescriptorSequence
}

// UnpackOptions tell UnpackClaims how to read entries whose label does not
// carry enough information on its own.
type UnpackOptions struct {
	// RecordFormat is used for entries labeled with the generic claim key.
	RecordFormat Format
	Mapping      Mapping
	Registry     *vdxf.Registry
}

// UnpackClaims decodes every descriptor under the generic claim key. The
// generic label marks a Record; a claim type label marks a descriptor
// sequence of that type.
func UnpackClaims(m *vdxf.ContentMultiMap, opts UnpackOptions) ([]Stored, error) {
	if opts.RecordFormat == "" {
		opts.RecordFormat = FormatDocument
	}
	if opts.Mapping == "" {
		opts.Mapping = MappingCurrent
	}
	if opts.Registry == nil {
		opts.Registry = vdxf.DefaultRegistry
	}
	generic := vdxf.ClaimKey.ID.String()

	var out []Stored
	for _, u := range m.Get(vdxf.ClaimKey.ID) {
		for _, d := range u.Descriptors() {
			if d.Label == generic {
				r, err := DecodeRecord(d.ObjectData, opts.RecordFormat, opts.Mapping)
				if err != nil {
					return nil, err
				}
				out = append(out, Stored{Record: r})
				continue
			}
			id, err := vdxf.ParseIdentifier(d.Label)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeUnsupportedType, "claim entry label is not an identifier")
			}
			t, err := TypeFromVdxfid(id, opts.Mapping)
			if err != nil {
				return nil, err
			}
			c, err := DecodeClaim(t, d.ObjectData, opts.Registry, WithMapping(opts.Mapping))
			if err != nil {
				return nil, err
			}
			out = append(out, Stored{Claim: c})
		}
	}
	return out, nil
}
