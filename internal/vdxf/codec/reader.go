package codec

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/wire"

	dErrors "valu/pkg/domain-errors"
)

// Reader walks an encoded buffer with a shared cursor.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Offset returns the cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Peek returns the next n bytes without advancing.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, overrun("peek", n, r.Remaining())
	}
	return r.buf[r.off : r.off+n], nil
}

// ReadVarInt reads a VarInt.
func (r *Reader) ReadVarInt() (*big.Int, error) {
	n, used, err := DecodeVarInt(r.buf[r.off:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedBuffer, fmt.Sprintf("codec: varint at offset %d", r.off))
	}
	r.off += used
	return n, nil
}

// ReadUint64 reads a VarInt that must fit in 64 bits.
func (r *Reader) ReadUint64() (uint64, error) {
	start := r.off
	n, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, dErrors.New(dErrors.CodeMalformedBuffer, fmt.Sprintf("codec: varint at offset %d exceeds 64 bits", start))
	}
	return n.Uint64(), nil
}

// ReadCompactSize reads a CompactSize varuint. Non-canonical encodings are
// rejected.
func (r *Reader) ReadCompactSize() (uint64, error) {
	br := bytes.NewReader(r.buf[r.off:])
	n, err := wire.ReadVarInt(br, 0)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeMalformedBuffer, fmt.Sprintf("codec: compact size at offset %d", r.off))
	}
	r.off += len(r.buf[r.off:]) - br.Len()
	return n, nil
}

// ReadSlice reads exactly n bytes.
func (r *Reader) ReadSlice(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, overrun("slice", n, r.Remaining())
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:r.off+n])
	r.off += n
	return out, nil
}

// ReadVarSlice reads a CompactSize length followed by that many bytes.
func (r *Reader) ReadVarSlice() ([]byte, error) {
	n, err := r.ReadCompactSize()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, overrun("varslice", int(min(n, uint64(len(r.buf)+1))), r.Remaining())
	}
	return r.ReadSlice(int(n))
}

// ReadString reads a UTF-8 VarSlice.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadVarSlice()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func overrun(what string, want, have int) error {
	return dErrors.New(dErrors.CodeMalformedBuffer,
		fmt.Sprintf("codec: %s of %d bytes overruns buffer (%d remaining)", what, want, have))
}
