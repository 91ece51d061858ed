// Package vdxf implements the typed key/value containers that identity
// updates carry: identifiers, data descriptors, the tagged value union, the
// content multimap and signature blobs.
//
// Domain purity: no I/O, no logging, no clocks. Every type serializes with
// the two-pass discipline of package codec.
package vdxf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // the chain's Hash160 is RIPEMD160(SHA256)

	dErrors "valu/pkg/domain-errors"
)

// IdentifierLen is the byte length of every Identifier.
const IdentifierLen = 20

// IdentityAddressVersion is the base58check version byte for identity and
// key identifiers.
const IdentityAddressVersion byte = 102

// Identifier is an opaque 20-byte key naming a field role, record type or
// identity.
type Identifier [IdentifierLen]byte

// ParseIdentifier decodes a base58check identifier string. Any version byte
// is accepted; use FromBase58Check to inspect it.
func ParseIdentifier(s string) (Identifier, error) {
	_, id, err := FromBase58Check(s)
	return id, err
}

// MustParseIdentifier is ParseIdentifier for package-level constants.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentifierFromBytes copies a raw 20-byte slice.
func IdentifierFromBytes(b []byte) (Identifier, error) {
	var id Identifier
	if len(b) != IdentifierLen {
		return id, dErrors.New(dErrors.CodeMalformedBuffer, "vdxf: identifier must be 20 bytes")
	}
	copy(id[:], b)
	return id, nil
}

// FromBase58Check decodes s into its version byte and 20-byte hash.
func FromBase58Check(s string) (byte, Identifier, error) {
	var id Identifier
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return 0, id, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: invalid base58check identifier "+s)
	}
	if len(payload) != IdentifierLen {
		return 0, id, dErrors.New(dErrors.CodeInvalidInput, "vdxf: identifier "+s+" is not 20 bytes")
	}
	copy(id[:], payload)
	return version, id, nil
}

// ToBase58Check encodes the identifier under the given version byte.
func ToBase58Check(id Identifier, version byte) string {
	return base58.CheckEncode(id[:], version)
}

// String renders the identifier as an identity address.
func (id Identifier) String() string {
	return ToBase58Check(id, IdentityAddressVersion)
}

// Hex renders the raw bytes.
func (id Identifier) Hex() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether every byte is zero.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// Equal compares two identifiers.
func (id Identifier) Equal(other Identifier) bool {
	return bytes.Equal(id[:], other[:])
}

func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) Identifier {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	var id Identifier
	copy(id[:], h.Sum(nil))
	return id
}

// DeriveIdentifier names a key that has no chain registration. The name is
// lower-cased before hashing so lookups are case-insensitive.
func DeriveIdentifier(name string) Identifier {
	return Hash160([]byte(strings.ToLower(name)))
}
