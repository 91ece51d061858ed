// Package attestation turns verified identity data into labeled text
// descriptors for attestations and their MMR export.
package attestation

import (
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// DocTypePassport is the identity document type that carries passport fields.
const DocTypePassport = "PASSPORT"

// ReviewCompleted is the review status that records a completion date.
const ReviewCompleted = "completed"

// Field is one attested value under a registered key name.
type Field struct {
	Name  string
	Value string
}

// Source yields attested fields in output order. Empty values are skipped
// by every consumer.
type Source interface {
	Fields() []Field
}

// Descriptors returns one text/plain descriptor per non-empty field, labeled
// with the id reg holds for the field's key name.
func Descriptors(reg *vdxf.Registry, src Source) ([]*vdxf.DataDescriptor, error) {
	var out []*vdxf.DataDescriptor
	for _, f := range src.Fields() {
		if f.Value == "" {
			continue
		}
		d, err := textDescriptor(reg, f.Name, f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func textDescriptor(reg *vdxf.Registry, name, value string) (*vdxf.DataDescriptor, error) {
	key, ok := reg.LookupName(name)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnsupportedType, "attestation: unregistered key "+name)
	}
	return vdxf.NewTextDescriptor(key.ID.String(), value), nil
}

func textDescriptors(reg *vdxf.Registry, fields ...Field) ([]*vdxf.DataDescriptor, error) {
	out := make([]*vdxf.DataDescriptor, 0, len(fields))
	for _, f := range fields {
		d, err := textDescriptor(reg, f.Name, f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ProofOfLifeDescriptors appends the attestation title and the attestor to
// the source descriptors.
func ProofOfLifeDescriptors(reg *vdxf.Registry, src Source, attestor, title string) ([]*vdxf.DataDescriptor, error) {
	if attestor == "" || title == "" {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "attestation: attestor and title are required")
	}
	out, err := Descriptors(reg, src)
	if err != nil {
		return nil, err
	}
	meta, err := textDescriptors(reg,
		Field{vdxf.AttestationNameKey.Name, title},
		Field{vdxf.AttestationRecipientKey.Name, attestor},
	)
	if err != nil {
		return nil, err
	}
	return append(out, meta...), nil
}

// MMRData exports the title, the recipient identity and the public address
// ahead of the source descriptors.
func MMRData(reg *vdxf.Registry, src Source, identityFor, title, publicAddress string) (vdxf.MMRData, error) {
	if identityFor == "" || title == "" || publicAddress == "" {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "attestation: identityFor, title and publicAddress are required")
	}
	leaves, err := textDescriptors(reg,
		Field{vdxf.AttestationNameKey.Name, title},
		Field{vdxf.AttestationRecipientKey.Name, identityFor},
		Field{vdxf.AttestationRecipientKey.Name, publicAddress},
	)
	if err != nil {
		return nil, err
	}
	fields, err := Descriptors(reg, src)
	if err != nil {
		return nil, err
	}
	return vdxf.NewMMRData(append(leaves, fields...)...), nil
}
