// Package codec implements the length-predictable wire primitives shared by
// every record serializer: arbitrary-precision VarInts, CompactSize
// varuints and length-prefixed VarSlices.
//
// Serializers follow a two-pass discipline: compute the exact encoded size
// with the *Len helpers, allocate a Writer of that size, write, then call
// Finish to assert that the prediction held.
package codec

import (
	"math/big"

	"github.com/btcsuite/btcd/wire"

	dErrors "valu/pkg/domain-errors"
)

var (
	bigOne      = big.NewInt(1)
	sevenBits   = big.NewInt(0x7f)
	errShortBuf = dErrors.New(dErrors.CodeMalformedBuffer, "codec: unexpected end of buffer")
)

// VarIntLen returns the number of bytes EncodeVarInt writes for n.
// Negative values are not representable and encode as zero.
func VarIntLen(n *big.Int) int {
	if n == nil || n.Sign() <= 0 {
		return 1
	}
	v := new(big.Int).Set(n)
	size := 1
	for v.Cmp(sevenBits) > 0 {
		v.Rsh(v, 7)
		v.Sub(v, bigOne)
		size++
	}
	return size
}

// EncodeVarInt encodes n in the MSB base-128 form used by the chain: every
// continuation byte carries 0x80 and each shift subtracts one, so every value
// has exactly one encoding.
func EncodeVarInt(n *big.Int) []byte {
	if n == nil || n.Sign() <= 0 {
		return []byte{0}
	}
	v := new(big.Int).Set(n)
	tmp := make([]byte, 0, VarIntLen(n))
	low := new(big.Int)
	for {
		b := byte(low.And(v, sevenBits).Uint64())
		if len(tmp) > 0 {
			b |= 0x80
		}
		tmp = append(tmp, b)
		if v.Cmp(sevenBits) <= 0 {
			break
		}
		v.Rsh(v, 7)
		v.Sub(v, bigOne)
	}
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp
}

// DecodeVarInt is the exact inverse of EncodeVarInt. It returns the value and
// the number of bytes consumed.
func DecodeVarInt(b []byte) (*big.Int, int, error) {
	n := new(big.Int)
	for i, c := range b {
		n.Lsh(n, 7)
		n.Or(n, big.NewInt(int64(c&0x7f)))
		if c&0x80 == 0 {
			return n, i + 1, nil
		}
		n.Add(n, bigOne)
	}
	return nil, 0, errShortBuf
}

// CompactSizeLen returns the encoded length of a CompactSize varuint.
func CompactSizeLen(n uint64) int {
	return wire.VarIntSerializeSize(n)
}

// VarSliceLen returns the encoded length of b with its CompactSize prefix.
func VarSliceLen(b []byte) int {
	return CompactSizeLen(uint64(len(b))) + len(b)
}

// StringLen returns the encoded length of s as a UTF-8 VarSlice.
func StringLen(s string) int {
	return CompactSizeLen(uint64(len(s))) + len(s)
}

// Uint64 returns a new big.Int holding v. It keeps call sites that build
// small versions and flags short.
func Uint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
