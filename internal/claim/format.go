package claim

import (
	dErrors "valu/pkg/domain-errors"
)

// Format names a claim encoding.
type Format string

const (
	// FormatDescriptorSequence is a Claim: one labeled descriptor per field.
	FormatDescriptorSequence Format = "descriptor-sequence"
	// FormatDocument is a Record whose type is the raw 20-byte identifier.
	FormatDocument Format = "document"
	// FormatDocumentTagged is a Record whose type is a numeric tag.
	FormatDocumentTagged Format = "document-tagged"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatDescriptorSequence, FormatDocument, FormatDocumentTagged:
		return Format(s), nil
	case "":
		return FormatDescriptorSequence, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown claim format: "+s)
}

// FieldOrder selects where CreateClaimData places the reference id.
type FieldOrder string

const (
	// ReferenceLast writes type, the fields, then referenceID.
	ReferenceLast FieldOrder = "reference-last"
	// ReferenceFirst writes type, referenceID, then the fields.
	ReferenceFirst FieldOrder = "reference-first"
)

func ParseFieldOrder(s string) (FieldOrder, error) {
	switch FieldOrder(s) {
	case ReferenceLast, ReferenceFirst:
		return FieldOrder(s), nil
	case "":
		return ReferenceLast, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown claim field order: "+s)
}

// Serialized is anything that can be packed into a content multi-map.
type Serialized interface {
	ByteLength() int
	MarshalBinary() ([]byte, error)
}
