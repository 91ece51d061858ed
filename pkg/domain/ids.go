// Package domain provides type-safe identifiers shared by the record packages.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/google/uuid"

	dErrors "valu/pkg/domain-errors"
)

// ReferenceIDLen is the byte length of a ReferenceID.
const ReferenceIDLen = 32

// ReferenceID is the stable 32-byte reference carried by every record.
type ReferenceID [ReferenceIDLen]byte

// BatchID correlates the records produced by one aggregation call in logs
// and traces. It never appears on the wire.
type BatchID uuid.UUID

// Parse functions - use at trust boundaries (CLI flags, JSON inputs).

func ParseReferenceID(s string) (ReferenceID, error) {
	var id ReferenceID
	if s == "" {
		return id, dErrors.New(dErrors.CodeInvalidInput, "reference ID cannot be empty")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, dErrors.Wrap(err, dErrors.CodeInvalidInput, "reference ID must be hex")
	}
	return ReferenceIDFromBytes(b)
}

func ReferenceIDFromBytes(b []byte) (ReferenceID, error) {
	var id ReferenceID
	if len(b) != ReferenceIDLen {
		return id, dErrors.New(dErrors.CodeInvalidInput, "reference ID must be 32 bytes")
	}
	copy(id[:], b)
	return id, nil
}

func ParseBatchID(s string) (BatchID, error) {
	if s == "" {
		return BatchID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "batch ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return BatchID(uuid.Nil), dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid batch ID")
	}
	return BatchID(id), nil
}

// NewReferenceID draws 32 bytes from r, or from crypto/rand when r is nil.
func NewReferenceID(r io.Reader) (ReferenceID, error) {
	if r == nil {
		r = rand.Reader
	}
	var id ReferenceID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return id, dErrors.Wrap(err, dErrors.CodeInternal, "read random reference ID")
	}
	return id, nil
}

// NewBatchID returns a random batch ID.
func NewBatchID() BatchID { return BatchID(uuid.New()) }

func (id ReferenceID) String() string { return hex.EncodeToString(id[:]) }
func (id BatchID) String() string     { return uuid.UUID(id).String() }

func (id ReferenceID) Bytes() []byte {
	out := make([]byte, ReferenceIDLen)
	copy(out, id[:])
	return out
}

func (id ReferenceID) IsZero() bool { return id == ReferenceID{} }
func (id BatchID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
