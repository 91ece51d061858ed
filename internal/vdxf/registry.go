package vdxf

import (
	"fmt"
	"strings"

	dErrors "valu/pkg/domain-errors"
)

// Kind selects the payload decoder for a UniValue entry keyed by an
// identifier. Keys of KindNone name roles (record types, labels) and never
// appear as UniValue entry keys.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindBytes
	KindDataDescriptor
	KindNested
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDataDescriptor:
		return "datadescriptor"
	case KindNested:
		return "univalue"
	case KindSignature:
		return "signature"
	default:
		return "none"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindNone; k <= KindSignature; k++ {
		if k.String() == strings.ToLower(s) {
			return k, nil
		}
	}
	return KindNone, dErrors.New(dErrors.CodeInvalidInput, "vdxf: unknown key kind "+s)
}

// Key is one registered identifier. A Placeholder key has a locally derived
// id and gives way to a registration of the same name.
type Key struct {
	Name        string
	ID          Identifier
	Kind        Kind
	Placeholder bool
}

// Registry is an immutable lookup table of keys. It is safe for concurrent
// reads; With returns an extended copy instead of mutating.
type Registry struct {
	byID   map[Identifier]Key
	byName map[string]Key
	order  []Key
}

// NewRegistry builds a registry, rejecting duplicate ids or names.
func NewRegistry(keys ...Key) (*Registry, error) {
	r := &Registry{
		byID:   make(map[Identifier]Key, len(keys)),
		byName: make(map[string]Key, len(keys)),
	}
	if err := r.add(keys); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) add(keys []Key) error {
	for _, k := range keys {
		if _, dup := r.byID[k.ID]; dup {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("vdxf: key %s registered twice", k.ID))
		}
		name := strings.ToLower(k.Name)
		if _, dup := r.byName[name]; dup && name != "" {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("vdxf: key name %q registered twice", k.Name))
		}
		r.byID[k.ID] = k
		if name != "" {
			r.byName[name] = k
		}
		r.order = append(r.order, k)
	}
	return nil
}

// With returns a new registry holding r's keys plus keys. A placeholder in r
// is dropped when keys registers its name again.
func (r *Registry) With(keys ...Key) (*Registry, error) {
	names := make(map[string]bool, len(keys))
	for _, k := range keys {
		names[strings.ToLower(k.Name)] = true
	}
	all := make([]Key, 0, len(r.order)+len(keys))
	for _, k := range r.order {
		if k.Placeholder && names[strings.ToLower(k.Name)] {
			continue
		}
		all = append(all, k)
	}
	all = append(all, keys...)
	return NewRegistry(all...)
}

// Lookup finds a key by identifier.
func (r *Registry) Lookup(id Identifier) (Key, bool) {
	k, ok := r.byID[id]
	return k, ok
}

// LookupName finds a key by its qualified name, case-insensitively.
func (r *Registry) LookupName(name string) (Key, bool) {
	k, ok := r.byName[strings.ToLower(name)]
	return k, ok
}

// Resolve accepts either a base58check identifier or a registered name.
func (r *Registry) Resolve(s string) (Identifier, error) {
	if k, ok := r.LookupName(s); ok {
		return k.ID, nil
	}
	id, err := ParseIdentifier(s)
	if err != nil {
		return Identifier{}, &dErrors.Error{Code: dErrors.CodeUnsupportedType, Message: "vdxf: unknown key " + s, Err: err}
	}
	return id, nil
}

// KindOf returns the payload kind registered for id.
func (r *Registry) KindOf(id Identifier) Kind {
	return r.byID[id].Kind
}

// Keys returns the keys in registration order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.order))
	copy(out, r.order)
	return out
}

// NewEmptyRegistry returns a registry with no keys.
func NewEmptyRegistry() *Registry {
	r, _ := NewRegistry()
	return r
}
