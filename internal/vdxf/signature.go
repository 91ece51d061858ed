package vdxf

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"valu/internal/vdxf/codec"
	dErrors "valu/pkg/domain-errors"
)

// SignatureData versions.
const (
	SignatureVersionFirst   = 1
	SignatureVersionLast    = 1
	SignatureVersionCurrent = 1
)

// Hash types for SignatureData.HashType.
const (
	HashTypeInvalid uint64 = 0
	HashTypeSHA256D uint64 = 4
	HashTypeSHA256  uint64 = 5
)

// SigTypeVerusID is the only signature type produced here: a compact
// secp256k1 signature by an identity's primary key.
const SigTypeVerusID uint64 = 1

// SignatureData is a self-delimiting signature blob bound to an identity.
type SignatureData struct {
	Version       *big.Int
	SystemID      Identifier
	HashType      uint64
	SignatureHash []byte
	IdentityID    Identifier
	SigType       uint64
	VdxfKeys      []Identifier
	VdxfKeyNames  []string
	BoundHashes   [][]byte
	Signature     []byte
}

func (s *SignatureData) version() *big.Int {
	if s.Version == nil {
		return big.NewInt(SignatureVersionCurrent)
	}
	return s.Version
}

// IsValid requires a known version, a system id and an actual signature.
func (s *SignatureData) IsValid() bool {
	if s == nil {
		return false
	}
	v := s.version()
	return v.Cmp(big.NewInt(SignatureVersionFirst)) >= 0 &&
		v.Cmp(big.NewInt(SignatureVersionLast)) <= 0 &&
		!s.SystemID.IsZero() &&
		len(s.Signature) > 0
}

// ByteLength is the exact size of MarshalBinary's output.
func (s *SignatureData) ByteLength() int {
	n := codec.VarIntLen(s.version())
	n += IdentifierLen
	n += codec.VarIntLen(codec.Uint64(s.HashType))
	n += codec.VarSliceLen(s.SignatureHash)
	n += IdentifierLen
	n += codec.VarIntLen(codec.Uint64(s.SigType))
	n += codec.CompactSizeLen(uint64(len(s.VdxfKeys))) + IdentifierLen*len(s.VdxfKeys)
	n += codec.CompactSizeLen(uint64(len(s.VdxfKeyNames)))
	for _, name := range s.VdxfKeyNames {
		n += codec.StringLen(name)
	}
	n += codec.CompactSizeLen(uint64(len(s.BoundHashes)))
	for _, h := range s.BoundHashes {
		n += codec.VarSliceLen(h)
	}
	n += codec.VarSliceLen(s.Signature)
	return n
}

func (s *SignatureData) MarshalBinary() ([]byte, error) {
	w := codec.NewWriter(s.ByteLength())
	w.WriteVarInt(s.version())
	w.WriteSlice(s.SystemID[:])
	w.WriteVarInt(codec.Uint64(s.HashType))
	w.WriteVarSlice(s.SignatureHash)
	w.WriteSlice(s.IdentityID[:])
	w.WriteVarInt(codec.Uint64(s.SigType))
	w.WriteCompactSize(uint64(len(s.VdxfKeys)))
	for _, k := range s.VdxfKeys {
		w.WriteSlice(k[:])
	}
	w.WriteCompactSize(uint64(len(s.VdxfKeyNames)))
	for _, name := range s.VdxfKeyNames {
		w.WriteString(name)
	}
	w.WriteCompactSize(uint64(len(s.BoundHashes)))
	for _, h := range s.BoundHashes {
		w.WriteVarSlice(h)
	}
	w.WriteVarSlice(s.Signature)
	return w.Finish()
}

func (s *SignatureData) UnmarshalBinary(b []byte) error {
	r := codec.NewReader(b)
	decoded, err := ReadSignatureData(r)
	if err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("vdxf: %d trailing bytes after signature", r.Remaining()))
	}
	*s = *decoded
	return nil
}

// ReadSignatureData decodes one signature blob at the reader's cursor.
func ReadSignatureData(r *codec.Reader) (*SignatureData, error) {
	s := &SignatureData{}
	var err error
	if s.Version, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	if s.SystemID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	if s.HashType, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if s.SignatureHash, err = r.ReadVarSlice(); err != nil {
		return nil, err
	}
	if s.IdentityID, err = readIdentifier(r); err != nil {
		return nil, err
	}
	if s.SigType, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	count, err := readCount(r, IdentifierLen)
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		id, err := readIdentifier(r)
		if err != nil {
			return nil, err
		}
		s.VdxfKeys = append(s.VdxfKeys, id)
	}
	if count, err = readCount(r, 1); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		s.VdxfKeyNames = append(s.VdxfKeyNames, name)
	}
	if count, err = readCount(r, 1); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		h, err := r.ReadVarSlice()
		if err != nil {
			return nil, err
		}
		s.BoundHashes = append(s.BoundHashes, h)
	}
	if s.Signature, err = r.ReadVarSlice(); err != nil {
		return nil, err
	}
	return s, nil
}

func readIdentifier(r *codec.Reader) (Identifier, error) {
	b, err := r.ReadSlice(IdentifierLen)
	if err != nil {
		return Identifier{}, err
	}
	return IdentifierFromBytes(b)
}

// readCount reads a CompactSize element count and rejects counts that could
// not fit in the remaining bytes at minSize bytes per element.
func readCount(r *codec.Reader, minSize int) (int, error) {
	n, err := r.ReadCompactSize()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()/minSize) {
		return 0, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("vdxf: count %d overruns buffer", n))
	}
	return int(n), nil
}

type signatureJSON struct {
	Version       codec.Number `json:"version"`
	SystemID      Identifier   `json:"systemid"`
	HashType      uint64       `json:"hashtype"`
	SignatureHash string       `json:"signaturehash"`
	IdentityID    Identifier   `json:"identityid"`
	SigType       uint64       `json:"signaturetype"`
	VdxfKeys      []Identifier `json:"vdxfkeys,omitempty"`
	VdxfKeyNames  []string     `json:"vdxfkeynames,omitempty"`
	BoundHashes   []string     `json:"boundhashes,omitempty"`
	Signature     string       `json:"signature"`
}

// MarshalJSON renders hashes as hex and the signature as base64.
func (s *SignatureData) MarshalJSON() ([]byte, error) {
	out := signatureJSON{
		Version:       codec.NumberFrom(s.version()),
		SystemID:      s.SystemID,
		HashType:      s.HashType,
		SignatureHash: hex.EncodeToString(s.SignatureHash),
		IdentityID:    s.IdentityID,
		SigType:       s.SigType,
		VdxfKeys:      s.VdxfKeys,
		VdxfKeyNames:  s.VdxfKeyNames,
		Signature:     base64.StdEncoding.EncodeToString(s.Signature),
	}
	for _, h := range s.BoundHashes {
		out.BoundHashes = append(out.BoundHashes, hex.EncodeToString(h))
	}
	return MarshalOrdered(out)
}

func (s *SignatureData) UnmarshalJSON(data []byte) error {
	raw := signatureJSON{Version: codec.NewNumber(SignatureVersionCurrent)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: signature json")
	}
	hash, err := hex.DecodeString(raw.SignatureHash)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: signaturehash is not hex")
	}
	sig, err := base64.StdEncoding.DecodeString(raw.Signature)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: signature is not base64")
	}
	out := SignatureData{
		Version:       raw.Version.Big(),
		SystemID:      raw.SystemID,
		HashType:      raw.HashType,
		SignatureHash: hash,
		IdentityID:    raw.IdentityID,
		SigType:       raw.SigType,
		VdxfKeys:      raw.VdxfKeys,
		VdxfKeyNames:  raw.VdxfKeyNames,
		Signature:     sig,
	}
	for _, h := range raw.BoundHashes {
		b, err := hex.DecodeString(h)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: boundhash is not hex")
		}
		out.BoundHashes = append(out.BoundHashes, b)
	}
	*s = out
	return nil
}
