package codec

import (
	"bytes"
	"encoding/json"
	"math/big"

	dErrors "valu/pkg/domain-errors"
)

// Number is an arbitrary-precision non-negative integer as it appears in
// JSON: written as a bare number, read from a number or a decimal string.
type Number struct {
	big.Int
}

// NewNumber returns a Number holding v.
func NewNumber(v uint64) Number {
	var n Number
	n.SetUint64(v)
	return n
}

// NumberFrom copies b into a Number. A nil b yields zero.
func NumberFrom(b *big.Int) Number {
	var n Number
	if b != nil {
		n.Set(b)
	}
	return n
}

// Big returns a copy of the value.
func (n *Number) Big() *big.Int {
	return new(big.Int).Set(&n.Int)
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Int.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "codec: number string")
		}
		data = []byte(s)
	}
	if _, ok := n.SetString(string(data), 10); !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "codec: not a decimal integer: "+string(data))
	}
	if n.Sign() < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "codec: negative integer: "+string(data))
	}
	return nil
}
