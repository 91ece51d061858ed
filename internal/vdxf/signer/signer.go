// Package signer produces and checks SignatureData blobs with compact
// secp256k1 signatures.
package signer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// Signer signs with one private key. The signing identity is the Hash160 of
// the compressed public key.
type Signer struct {
	key      *btcec.PrivateKey
	identity vdxf.Identifier
	systemID vdxf.Identifier
}

// New returns a Signer for key on the given system.
func New(key *btcec.PrivateKey, systemID vdxf.Identifier) *Signer {
	return &Signer{
		key:      key,
		identity: vdxf.Hash160(key.PubKey().SerializeCompressed()),
		systemID: systemID,
	}
}

// FromHex parses a 32-byte hex private key.
func FromHex(privHex string, systemID vdxf.Identifier) (*Signer, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "signer: private key is not hex")
	}
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "signer: private key must be 32 bytes")
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return New(key, systemID), nil
}

// IdentityID returns the identity the signatures are bound to.
func (s *Signer) IdentityID() vdxf.Identifier {
	return s.identity
}

// SystemID returns the system the signatures are bound to.
func (s *Signer) SystemID() vdxf.Identifier {
	return s.systemID
}

// Sign signs SHA-256(msg).
func (s *Signer) Sign(msg []byte) (*vdxf.SignatureData, error) {
	hash := sha256.Sum256(msg)
	sig, err := ecdsa.SignCompact(s.key, hash[:], true)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "signer: sign")
	}
	return &vdxf.SignatureData{
		SystemID:      s.systemID,
		HashType:      vdxf.HashTypeSHA256,
		SignatureHash: hash[:],
		IdentityID:    s.identity,
		SigType:       vdxf.SigTypeVerusID,
		Signature:     sig,
	}, nil
}

// Verify checks that sig covers msg and was produced by the key whose
// Hash160 is sig.IdentityID.
func Verify(sig *vdxf.SignatureData, msg []byte) error {
	if !sig.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "signer: signature is incomplete")
	}
	if sig.HashType != vdxf.HashTypeSHA256 {
		return dErrors.New(dErrors.CodeUnsupportedType, "signer: unsupported hash type")
	}
	hash := sha256.Sum256(msg)
	if !bytes.Equal(hash[:], sig.SignatureHash) {
		return dErrors.New(dErrors.CodeInvalidInput, "signer: signature hash does not match message")
	}
	pub, compressed, err := ecdsa.RecoverCompact(sig.Signature, hash[:])
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "signer: recover public key")
	}
	serialized := pub.SerializeUncompressed()
	if compressed {
		serialized = pub.SerializeCompressed()
	}
	if vdxf.Hash160(serialized) != sig.IdentityID {
		return dErrors.New(dErrors.CodeInvalidInput, "signer: signature was not made by "+sig.IdentityID.String())
	}
	return nil
}
