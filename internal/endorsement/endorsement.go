// Package endorsement implements third-party endorsements: a flat record
// with optional metadata and an optional signature, both announced by flag
// bits and written unprefixed at the end of the record.
package endorsement

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"valu/internal/vdxf"
	"valu/internal/vdxf/codec"
	"valu/internal/vdxf/signer"
	"valu/pkg/domain"
	dErrors "valu/pkg/domain-errors"
)

// Endorsement versions.
const (
	VersionInvalid = 0
	VersionFirst   = 1
	VersionLast    = 1
	VersionCurrent = 1
)

// Flag bits.
const (
	FlagHasMetadata  uint64 = 1
	FlagHasSignature uint64 = 2

	flagMask = FlagHasMetadata | FlagHasSignature
)

// Endorsement is one endorsement of Endorsee.
type Endorsement struct {
	Version *big.Int
	// Flags is the value last stored by SetFlags or read from the wire.
	// Binary encoders recompute it; JSON output is gated by it.
	Flags     uint64
	Endorsee  string
	Message   string
	Reference []byte
	Metadata  *vdxf.UniValue
	Signature *vdxf.SignatureData
}

// New returns a current-version endorsement without metadata or signature.
func New(endorsee, message string, ref domain.ReferenceID) *Endorsement {
	return &Endorsement{
		Version:   big.NewInt(VersionCurrent),
		Endorsee:  endorsee,
		Message:   message,
		Reference: ref.Bytes(),
	}
}

func (e *Endorsement) version() *big.Int {
	if e.Version == nil {
		return big.NewInt(VersionCurrent)
	}
	return e.Version
}

// ComputeFlags derives the flags from field presence. A signature only
// counts when it is itself valid.
func (e *Endorsement) ComputeFlags() uint64 {
	var flags uint64
	if e.Metadata != nil {
		flags |= FlagHasMetadata
	}
	if e.Signature.IsValid() {
		flags |= FlagHasSignature
	}
	return flags
}

// SetFlags stores ComputeFlags in e.Flags.
func (e *Endorsement) SetFlags() {
	e.Flags = e.ComputeFlags()
}

// AttachMetadata sets the metadata and refreshes the flags.
func (e *Endorsement) AttachMetadata(u *vdxf.UniValue) {
	e.Metadata = u
	e.SetFlags()
}

// DetachMetadata clears the metadata and refreshes the flags.
func (e *Endorsement) DetachMetadata() {
	e.Metadata = nil
	e.SetFlags()
}

// IsValid checks the version bounds.
func (e *Endorsement) IsValid() bool {
	v := e.version()
	return v.Cmp(big.NewInt(VersionFirst)) >= 0 && v.Cmp(big.NewInt(VersionLast)) <= 0
}

// ByteLength is the exact size of MarshalBinary's output.
func (e *Endorsement) ByteLength() int {
	flags := e.ComputeFlags()
	n := codec.VarIntLen(e.version()) + codec.VarIntLen(codec.Uint64(flags))
	n += codec.StringLen(e.Endorsee) + codec.StringLen(e.Message) + codec.VarSliceLen(e.Reference)
	if flags&FlagHasMetadata != 0 {
		n += e.Metadata.ByteLength()
	}
	if flags&FlagHasSignature != 0 {
		n += e.Signature.ByteLength()
	}
	return n
}

// MarshalBinary writes version, flags, endorsee, message, reference, then
// the raw metadata and signature encodings when present.
func (e *Endorsement) MarshalBinary() ([]byte, error) {
	flags := e.ComputeFlags()
	w := codec.NewWriter(e.ByteLength())
	w.WriteVarInt(e.version())
	w.WriteVarInt(codec.Uint64(flags))
	w.WriteString(e.Endorsee)
	w.WriteString(e.Message)
	w.WriteVarSlice(e.Reference)
	if flags&FlagHasMetadata != 0 {
		b, err := e.Metadata.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.WriteSlice(b)
	}
	if flags&FlagHasSignature != 0 {
		b, err := e.Signature.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.WriteSlice(b)
	}
	return w.Finish()
}

// Decode reads one endorsement from b. The metadata union ends at the first
// key reg does not register, which is where the signature begins.
func Decode(b []byte, reg *vdxf.Registry) (*Endorsement, error) {
	r := codec.NewReader(b)
	e := &Endorsement{}
	var err error
	if e.Version, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	if e.Flags, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if e.Flags&^flagMask != 0 {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("endorsement: unknown flags %#x", e.Flags))
	}
	if e.Endorsee, err = r.ReadString(); err != nil {
		return nil, err
	}
	if e.Message, err = r.ReadString(); err != nil {
		return nil, err
	}
	if e.Reference, err = r.ReadVarSlice(); err != nil {
		return nil, err
	}
	if e.Flags&FlagHasMetadata != 0 {
		rest, _ := r.Peek(r.Remaining())
		u, used, err := vdxf.DecodeUniValuePrefix(rest, reg)
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadSlice(used); err != nil {
			return nil, err
		}
		e.Metadata = u
	}
	if e.Flags&FlagHasSignature != 0 {
		if e.Signature, err = vdxf.ReadSignatureData(r); err != nil {
			return nil, err
		}
	}
	if r.Remaining() != 0 {
		return nil, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("endorsement: %d trailing bytes", r.Remaining()))
	}
	return e, nil
}

// SigningBytes is the encoding with the signature detached.
func (e *Endorsement) SigningBytes() ([]byte, error) {
	unsigned := *e
	unsigned.Signature = nil
	return unsigned.MarshalBinary()
}

// Signer produces a signature over a message.
type Signer interface {
	Sign(msg []byte) (*vdxf.SignatureData, error)
}

// Sign signs SigningBytes and attaches the result.
func (e *Endorsement) Sign(s Signer) error {
	msg, err := e.SigningBytes()
	if err != nil {
		return err
	}
	sig, err := s.Sign(msg)
	if err != nil {
		return err
	}
	e.Signature = sig
	e.SetFlags()
	return nil
}

// Verify checks the attached signature against SigningBytes.
func (e *Endorsement) Verify() error {
	if e.Signature == nil {
		return dErrors.New(dErrors.CodeMissingRequiredField, "endorsement is not signed")
	}
	msg, err := e.SigningBytes()
	if err != nil {
		return err
	}
	return signer.Verify(e.Signature, msg)
}

type endorsementJSON struct {
	Version   codec.Number    `json:"version"`
	Flags     codec.Number    `json:"flags"`
	Endorsee  string          `json:"endorsee"`
	Message   string          `json:"message"`
	Reference string          `json:"reference"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Signature json.RawMessage `json:"signature,omitempty"`
}

// MarshalJSON emits metadata and signature only when both the stored flag
// bit and the value are present.
func (e *Endorsement) MarshalJSON() ([]byte, error) {
	out := endorsementJSON{
		Version:   codec.NumberFrom(e.version()),
		Flags:     codec.NewNumber(e.Flags),
		Endorsee:  e.Endorsee,
		Message:   e.Message,
		Reference: hex.EncodeToString(e.Reference),
	}
	if e.Metadata != nil && e.Flags&FlagHasMetadata != 0 {
		raw, err := e.Metadata.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Metadata = raw
	}
	if e.Signature != nil && e.Flags&FlagHasSignature != 0 {
		raw, err := e.Signature.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Signature = raw
	}
	return vdxf.MarshalOrdered(out)
}

// UnmarshalJSON keeps the given flags and reads metadata and signature only
// when their bits are set.
func (e *Endorsement) UnmarshalJSON(data []byte) error {
	raw := endorsementJSON{Version: codec.NewNumber(VersionCurrent)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "endorsement json")
	}
	ref, err := hex.DecodeString(raw.Reference)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "endorsement reference is not hex")
	}
	out := Endorsement{
		Version:   raw.Version.Big(),
		Flags:     raw.Flags.Uint64(),
		Endorsee:  raw.Endorsee,
		Message:   raw.Message,
		Reference: ref,
	}
	if len(raw.Metadata) > 0 && out.Flags&FlagHasMetadata != 0 {
		if out.Metadata, err = vdxf.ParseUniValueJSON(raw.Metadata, vdxf.DefaultRegistry); err != nil {
			return err
		}
	}
	if len(raw.Signature) > 0 && out.Flags&FlagHasSignature != 0 {
		out.Signature = &vdxf.SignatureData{}
		if err := out.Signature.UnmarshalJSON(raw.Signature); err != nil {
			return err
		}
	}
	*e = out
	return nil
}
