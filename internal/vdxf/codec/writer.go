package codec

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/wire"

	dErrors "valu/pkg/domain-errors"
)

// Writer accumulates an encoding whose final size was computed up front.
type Writer struct {
	buf  bytes.Buffer
	size int
}

// NewWriter returns a Writer that expects exactly size bytes.
func NewWriter(size int) *Writer {
	w := &Writer{size: size}
	w.buf.Grow(size)
	return w
}

// WriteVarInt appends n as a VarInt.
func (w *Writer) WriteVarInt(n *big.Int) {
	w.buf.Write(EncodeVarInt(n))
}

// WriteCompactSize appends n as a CompactSize varuint.
func (w *Writer) WriteCompactSize(n uint64) {
	// bytes.Buffer writes never fail.
	_ = wire.WriteVarInt(&w.buf, 0, n)
}

// WriteVarSlice appends b with its CompactSize length prefix.
func (w *Writer) WriteVarSlice(b []byte) {
	w.WriteCompactSize(uint64(len(b)))
	w.buf.Write(b)
}

// WriteString appends s as a UTF-8 VarSlice.
func (w *Writer) WriteString(s string) {
	w.WriteCompactSize(uint64(len(s)))
	w.buf.WriteString(s)
}

// WriteSlice appends b verbatim.
func (w *Writer) WriteSlice(b []byte) {
	w.buf.Write(b)
}

// Len reports the bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Finish returns the encoding, or invariant_violation when the bytes written
// differ from the size passed to NewWriter.
func (w *Writer) Finish() ([]byte, error) {
	if w.buf.Len() != w.size {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("codec: wrote %d bytes, expected %d", w.buf.Len(), w.size))
	}
	return w.buf.Bytes(), nil
}
