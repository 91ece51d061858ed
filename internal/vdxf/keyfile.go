package vdxf

import (
	"io"

	"github.com/BurntSushi/toml"

	dErrors "valu/pkg/domain-errors"
)

// KeyFile is the TOML shape for extra key registrations:
//
//	[[key]]
//	name = "acme.vrsc::claim.license"
//	id   = "i..."          # optional, derived from name when empty
//	kind = "datadescriptor" # optional, defaults to none
type KeyFile struct {
	Keys []KeyEntry `toml:"key"`
}

// KeyEntry is one registration in a KeyFile.
type KeyEntry struct {
	Name string `toml:"name"`
	ID   string `toml:"id"`
	Kind string `toml:"kind"`
}

// DecodeKeys parses a TOML key file.
func DecodeKeys(r io.Reader) ([]Key, error) {
	var f KeyFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: parse key file")
	}
	keys := make([]Key, 0, len(f.Keys))
	for _, e := range f.Keys {
		if e.Name == "" {
			return nil, dErrors.New(dErrors.CodeMissingRequiredField, "vdxf: key entry without name")
		}
		kind := KindNone
		if e.Kind != "" {
			k, err := ParseKind(e.Kind)
			if err != nil {
				return nil, err
			}
			kind = k
		}
		id := DeriveIdentifier(e.Name)
		if e.ID != "" {
			parsed, err := ParseIdentifier(e.ID)
			if err != nil {
				return nil, err
			}
			id = parsed
		}
		keys = append(keys, Key{Name: e.Name, ID: id, Kind: kind})
	}
	return keys, nil
}

// LoadKeys extends base with the registrations read from r.
func LoadKeys(base *Registry, r io.Reader) (*Registry, error) {
	keys, err := DecodeKeys(r)
	if err != nil {
		return nil, err
	}
	return base.With(keys...)
}
