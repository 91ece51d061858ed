package endorsement

import (
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// supportedTypes lists the endorsement keys an identity update may use.
var supportedTypes = map[vdxf.Identifier]bool{
	vdxf.EndorsementEmploymentPersonalKey.ID: true,
}

// DefaultType is used when no endorsement type is given.
var DefaultType = vdxf.EndorsementEmploymentPersonalKey.ID

func checkType(typ vdxf.Identifier) (vdxf.Identifier, error) {
	if typ.IsZero() {
		return DefaultType, nil
	}
	if !supportedTypes[typ] {
		return vdxf.Identifier{}, dErrors.New(dErrors.CodeUnsupportedType, "unsupported endorsement type: "+typ.String())
	}
	return typ, nil
}

// ToIdentityUpdateJSON files the endorsement as a serializedhex item under
// typ. A zero typ means DefaultType.
func (e *Endorsement) ToIdentityUpdateJSON(typ vdxf.Identifier) (*vdxf.IdentityUpdate, error) {
	return IdentityUpdateJSON(typ, e)
}

// IdentityUpdateJSON files every endorsement under typ in order.
func IdentityUpdateJSON(typ vdxf.Identifier, es ...*Endorsement) (*vdxf.IdentityUpdate, error) {
	typ, err := checkType(typ)
	if err != nil {
		return nil, err
	}
	update := vdxf.NewIdentityUpdate()
	for _, e := range es {
		b, err := e.MarshalBinary()
		if err != nil {
			return nil, err
		}
		if err := update.AddSerialized(typ, b); err != nil {
			return nil, err
		}
	}
	return update, nil
}

// StoreMultipleEndorsements packs each endorsement into a descriptor labeled
// with typ and files them under typ.
func StoreMultipleEndorsements(typ vdxf.Identifier, es []*Endorsement) (*vdxf.ContentMultiMap, error) {
	typ, err := checkType(typ)
	if err != nil {
		return nil, err
	}
	values := make([]*vdxf.UniValue, 0, len(es))
	for _, e := range es {
		b, err := e.MarshalBinary()
		if err != nil {
			return nil, err
		}
		u := vdxf.NewUniValue()
		u.AppendDescriptor(vdxf.NewDataDescriptor(b, vdxf.WithLabel(typ.String())))
		values = append(values, u)
	}
	m := vdxf.NewContentMultiMap()
	m.Add(typ, values...)
	return m, nil
}

// UnpackEndorsements decodes every descriptor filed under typ.
func UnpackEndorsements(m *vdxf.ContentMultiMap, typ vdxf.Identifier, reg *vdxf.Registry) ([]*Endorsement, error) {
	typ, err := checkType(typ)
	if err != nil {
		return nil, err
	}
	var out []*Endorsement
	for _, u := range m.Get(typ) {
		for _, d := range u.Descriptors() {
			e, err := Decode(d.ObjectData, reg)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}
