package claim

import (
	"encoding/json"

	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// Reserved descriptor labels.
const (
	LabelVersion     = "version"
	LabelType        = "type"
	LabelReferenceID = "referenceID"
)

// Field is a caller-defined labeled value.
type Field struct {
	Label string
	Value string
}

// Fields is the input to CreateClaimData. Title, Organization and Body are
// required except in the reference-first order. An empty ReferenceID is
// replaced by 32 random bytes.
type Fields struct {
	Title        string
	Organization string
	Body         string
	Dates        string
	Issued       string
	ReferenceID  string
	Extra        []Field

	// Order lists the labels as the caller supplied them. The reference-first
	// order writes fields in this order; ParseFields fills it.
	Order []string
}

// ParseFields reads a JSON object of string values. Known keys fill the
// named fields; anything else becomes an Extra field in input order.
func ParseFields(data []byte) (Fields, error) {
	obj, err := vdxf.ReadObject(data)
	if err != nil {
		return Fields{}, err
	}
	var f Fields
	for _, m := range obj {
		var v string
		if err := json.Unmarshal(m.Value, &v); err != nil {
			return Fields{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "claim field "+m.Key+" must be a string")
		}
		if m.Key != LabelReferenceID && m.Key != LabelType {
			f.Order = append(f.Order, m.Key)
		}
		switch m.Key {
		case "title":
			f.Title = v
		case "organization":
			f.Organization = v
		case "body":
			f.Body = v
		case "dates":
			f.Dates = v
		case "issued":
			f.Issued = v
		case LabelReferenceID:
			f.ReferenceID = v
		case LabelType:
			// the claim's own type wins
		default:
			f.Extra = append(f.Extra, Field{Label: m.Key, Value: v})
		}
	}
	return f, nil
}

func (f Fields) validate() error {
	if f.Title == "" {
		return dErrors.New(dErrors.CodeMissingRequiredField, "claim title is required")
	}
	if f.Organization == "" {
		return dErrors.New(dErrors.CodeMissingRequiredField, "claim organization is required")
	}
	if f.Body == "" {
		return dErrors.New(dErrors.CodeMissingRequiredField, "claim body is required")
	}
	return f.validateLabels()
}

func (f Fields) validateLabels() error {
	for _, e := range f.Extra {
		switch e.Label {
		case "":
			return dErrors.New(dErrors.CodeInvalidInput, "claim field label is required")
		case LabelVersion, LabelType, LabelReferenceID, "title", "organization", "body", "dates", "issued":
			return dErrors.New(dErrors.CodeInvalidInput, "claim field label is reserved: "+e.Label)
		}
	}
	return nil
}

// ordered returns the labeled values after type and before referenceID.
func (f Fields) ordered() []Field {
	out := []Field{
		{Label: "title", Value: f.Title},
		{Label: "organization", Value: f.Organization},
		{Label: "body", Value: f.Body},
	}
	if f.Dates != "" {
		out = append(out, Field{Label: "dates", Value: f.Dates})
	}
	if f.Issued != "" {
		out = append(out, Field{Label: "issued", Value: f.Issued})
	}
	return append(out, f.Extra...)
}

func (f Fields) named(label string) (string, bool) {
	switch label {
	case "title":
		return f.Title, true
	case "organization":
		return f.Organization, true
	case "body":
		return f.Body, true
	case "dates":
		return f.Dates, true
	case "issued":
		return f.Issued, true
	}
	return "", false
}

// supplied returns the labeled values in the caller's order. Without an
// Order, title, organization and body come first and are kept even when
// empty. Labels missing from Order follow in the default order.
func (f Fields) supplied() []Field {
	var out []Field
	seen := make(map[string]bool)
	emit := func(label, value string) {
		if seen[label] {
			return
		}
		seen[label] = true
		out = append(out, Field{Label: label, Value: value})
	}
	extra := func(label string) (string, bool) {
		for _, e := range f.Extra {
			if e.Label == label {
				return e.Value, true
			}
		}
		return "", false
	}

	for _, label := range f.Order {
		if v, ok := f.named(label); ok {
			emit(label, v)
		} else if v, ok := extra(label); ok {
			emit(label, v)
		}
	}
	for _, label := range []string{"title", "organization", "body", "dates", "issued"} {
		v, _ := f.named(label)
		if v == "" && (len(f.Order) > 0 || label == "dates" || label == "issued") {
			continue
		}
		emit(label, v)
	}
	for _, e := range f.Extra {
		emit(e.Label, e.Value)
	}
	return out
}

type message struct {
	Message string `json:"message"`
}

func messageDescriptor(label, value string) (*vdxf.DataDescriptor, error) {
	b, err := vdxf.MarshalOrdered(message{Message: value})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode claim field "+label)
	}
	return vdxf.NewDataDescriptor(b, vdxf.WithLabel(label), vdxf.WithMimeType(vdxf.MimeTextPlain)), nil
}
