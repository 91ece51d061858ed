package vdxf

import (
	"encoding/json"

	dErrors "valu/pkg/domain-errors"
)

// MMREntry is one leaf of the Merkle-mountain-range export:
// {"vdxfdata": {"<DataDescriptorKey>": descriptor}}.
type MMREntry struct {
	Descriptor *DataDescriptor
}

// MMRData is the ordered leaf list handed to an MMR builder.
type MMRData []MMREntry

// NewMMRData wraps descriptors in order.
func NewMMRData(descriptors ...*DataDescriptor) MMRData {
	out := make(MMRData, len(descriptors))
	for i, d := range descriptors {
		out[i] = MMREntry{Descriptor: d}
	}
	return out
}

// Descriptors unwraps the leaves.
func (m MMRData) Descriptors() []*DataDescriptor {
	out := make([]*DataDescriptor, len(m))
	for i, e := range m {
		out[i] = e.Descriptor
	}
	return out
}

func (e MMREntry) MarshalJSON() ([]byte, error) {
	raw, err := e.Descriptor.MarshalJSON()
	if err != nil {
		return nil, err
	}
	inner, err := Object{{Key: DataDescriptorKey.ID.String(), Value: raw}}.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return Object{{Key: "vdxfdata", Value: inner}}.MarshalJSON()
}

func (e *MMREntry) UnmarshalJSON(data []byte) error {
	var outer struct {
		VdxfData map[string]json.RawMessage `json:"vdxfdata"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: mmr entry")
	}
	raw, ok := outer.VdxfData[DataDescriptorKey.ID.String()]
	if !ok || len(outer.VdxfData) != 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "vdxf: mmr entry must hold exactly one data descriptor")
	}
	d := &DataDescriptor{}
	if err := d.UnmarshalJSON(raw); err != nil {
		return err
	}
	e.Descriptor = d
	return nil
}
