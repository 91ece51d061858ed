package vdxf

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "valu/pkg/domain-errors"
)

type DescriptorSuite struct {
	suite.Suite
}

func TestDescriptorSuite(t *testing.T) {
	suite.Run(t, new(DescriptorSuite))
}

func (s *DescriptorSuite) TestBinaryVectors() {
	tests := []struct {
		name string
		d    *DataDescriptor
		hex  string
	}{
		{
			name: "empty optional fields",
			d:    &DataDescriptor{},
			hex:  "010000",
		},
		{
			name: "label only",
			d:    NewDataDescriptor([]byte("hi"), WithLabel("x")),
			hex:  "0120026869" + "0178",
		},
		{
			name: "label and mime",
			d:    NewTextDescriptor("x", "hi"),
			hex:  "0160026869" + "0178" + "0a746578742f706c61696e",
		},
		{
			name: "all optional fields",
			d: NewDataDescriptor([]byte{0xaa}, WithLabel("l"), WithMimeType("m"),
				WithEncryption([]byte{1}, []byte{2}, []byte{3}, []byte{4})),
			hex: "01" + "7f" + "01aa" + "016c" + "016d" + "0101" + "0102" + "0103" + "0104",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			out, err := tt.d.MarshalBinary()
			s.Require().NoError(err)
			s.Equal(tt.hex, hex.EncodeToString(out))
			s.Equal(len(out), tt.d.ByteLength())

			var back DataDescriptor
			s.Require().NoError(back.UnmarshalBinary(out))
			again, err := back.MarshalBinary()
			s.Require().NoError(err)
			s.Equal(out, again)
		})
	}
}

func (s *DescriptorSuite) TestFlagsFollowFieldPresence() {
	d := NewDataDescriptor([]byte("v"))
	s.Equal(uint64(0), d.Flags)

	d.Label = "late label"
	s.Equal(FlagLabelPresent, d.ComputeFlags())
	s.Equal(uint64(0), d.Flags, "ComputeFlags must not mutate")

	out, err := d.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(byte(FlagLabelPresent), out[1], "encoder derives flags itself")
	s.Equal(len(out), d.ByteLength())

	d.Label = ""
	d.SetFlags()
	s.Equal(uint64(0), d.Flags)

	s.Run("encrypted bit is kept", func() {
		enc := NewDataDescriptor([]byte("v"), WithEncryption(nil, nil, nil, nil))
		s.Equal(FlagEncryptedData, enc.ComputeFlags())
		s.True(enc.HasFlag(FlagEncryptedData))
	})

	s.Run("stale flags are ignored", func() {
		stale := &DataDescriptor{Flags: FlagMimeTypePresent | FlagSaltPresent, ObjectData: []byte("v")}
		s.Equal(uint64(0), stale.ComputeFlags())
	})
}

func (s *DescriptorSuite) TestWideVersionRoundTrips() {
	v, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	d := NewDataDescriptor([]byte("x"), WithDescriptorVersion(v))
	out, err := d.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(len(out), d.ByteLength())

	var back DataDescriptor
	s.Require().NoError(back.UnmarshalBinary(out))
	s.Equal(0, v.Cmp(back.Version))
	s.False(back.IsValid())
	s.True(NewDataDescriptor(nil).IsValid())
}

func (s *DescriptorSuite) TestDecodeRejectsMalformed() {
	tests := []struct {
		name string
		hex  string
	}{
		{"truncated objectdata", "01000568"},
		{"unknown flag bits", "018001" + "00"},
		{"label flag with empty label", "0120" + "00" + "00"},
		{"mime flag with empty mime", "0140" + "00" + "00"},
		{"missing label", "0120" + "00"},
		{"trailing bytes", "010000" + "ff"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			var d DataDescriptor
			err := d.UnmarshalBinary(mustHex(tt.hex))
			s.True(errors.Is(err, dErrors.ErrMalformedBuffer), "got %v", err)
		})
	}
}

func (s *DescriptorSuite) TestJSON() {
	s.Run("objectdata is always hex", func() {
		d := NewDataDescriptor([]byte(`{"message":"Developer"}`), WithLabel("title"), WithMimeType("application/json"))
		out, err := MarshalOrdered(d)
		s.Require().NoError(err)
		s.Equal(`{"version":1,"flags":96,"objectdata":"`+hex.EncodeToString(d.ObjectData)+`","label":"title","mimetype":"application/json"}`, string(out))
	})

	s.Run("round trip restores identical bytes", func() {
		d := NewDataDescriptor([]byte{0, 1, 2}, WithLabel("l"), WithEncryption([]byte{9}, nil, []byte{}, nil))
		raw, err := json.Marshal(d)
		s.Require().NoError(err)

		var back DataDescriptor
		s.Require().NoError(json.Unmarshal(raw, &back))
		want, err := d.MarshalBinary()
		s.Require().NoError(err)
		got, err := back.MarshalBinary()
		s.Require().NoError(err)
		s.Equal(want, got)
	})

	s.Run("objectdata given as inline json", func() {
		var d DataDescriptor
		s.Require().NoError(json.Unmarshal([]byte(`{"objectdata": {"message": "x"}, "label": "type"}`), &d))
		s.Equal(`{"message":"x"}`, string(d.ObjectData))
		s.Equal(0, d.Version.Cmp(big.NewInt(1)))
		s.Equal(FlagLabelPresent, d.Flags)
	})

	s.Run("caller supplied flags are recomputed", func() {
		var d DataDescriptor
		s.Require().NoError(json.Unmarshal([]byte(`{"version":"1","flags":126,"objectdata":"00"}`), &d))
		s.Equal(uint64(0), d.Flags)
	})

	s.Run("bad hex", func() {
		var d DataDescriptor
		err := json.Unmarshal([]byte(`{"objectdata":"zz"}`), &d)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
