package endorsement

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"valu/internal/vdxf"
	"valu/internal/vdxf/signer"
	"valu/pkg/domain"
	dErrors "valu/pkg/domain-errors"
)

const (
	testReference = "f0e88c0a40e1681634faa6e6b23d5c60b413a4669817df55574a47086dd7e924"
	testKey       = "0101010101010101010101010101010101010101010101010101010101010101"
	plainHex      = "01001363616e6469646174652e767273637465737440174920656e646f72736520582068617320646f6e6520592e20" + testReference
)

type EndorsementSuite struct {
	suite.Suite
	signer *signer.Signer
}

func TestEndorsementSuite(t *testing.T) {
	suite.Run(t, new(EndorsementSuite))
}

func (s *EndorsementSuite) SetupTest() {
	var err error
	s.signer, err = signer.FromHex(testKey, vdxf.Namespace)
	s.Require().NoError(err)
}

func (s *EndorsementSuite) newEndorsement() *Endorsement {
	ref, err := domain.ParseReferenceID(testReference)
	s.Require().NoError(err)
	return New("candidate.vrsctest@", "I endorse X has done Y.", ref)
}

func metadata() *vdxf.UniValue {
	u := vdxf.NewUniValue()
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		u.AppendDescriptor(vdxf.NewTextDescriptor(kv[0], kv[1]))
	}
	return u
}

func (s *EndorsementSuite) roundTrip(e *Endorsement) *Endorsement {
	out, err := e.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(len(out), e.ByteLength())
	back, err := Decode(out, vdxf.DefaultRegistry)
	s.Require().NoError(err)
	again, err := back.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(hex.EncodeToString(out), hex.EncodeToString(again))
	return back
}

func (s *EndorsementSuite) TestPlainBinary() {
	e := s.newEndorsement()
	out, err := e.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(plainHex, hex.EncodeToString(out))
	s.True(e.IsValid())

	back := s.roundTrip(e)
	s.Equal("candidate.vrsctest@", back.Endorsee)
	s.Nil(back.Metadata)
	s.Nil(back.Signature)
}

func (s *EndorsementSuite) TestMetadataAndSignatureRoundTrip() {
	e := s.newEndorsement()
	e.AttachMetadata(metadata())
	s.Require().NoError(e.Sign(s.signer))
	s.Equal(FlagHasMetadata|FlagHasSignature, e.Flags)

	back := s.roundTrip(e)
	s.Equal(FlagHasMetadata|FlagHasSignature, back.Flags)
	s.Require().NotNil(back.Metadata)
	s.Equal(3, back.Metadata.Len())
	s.Require().NotNil(back.Signature)
	s.NoError(back.Verify())

	back.Message = "tampered"
	s.True(dErrors.HasCode(back.Verify(), dErrors.CodeInvalidInput))
}

func (s *EndorsementSuite) TestSignatureOnly() {
	e := s.newEndorsement()
	s.Require().NoError(e.Sign(s.signer))
	back := s.roundTrip(e)
	s.Equal(FlagHasSignature, back.Flags)
	s.NoError(back.Verify())
}

func (s *EndorsementSuite) TestFlagDeterminism() {
	e := s.newEndorsement()
	e.Metadata = metadata()
	e.SetFlags()
	first := e.Flags
	e.SetFlags()
	s.Equal(first, e.Flags)
	s.Equal(FlagHasMetadata, first)

	e.Metadata = nil
	e.SetFlags()
	s.Zero(e.Flags & FlagHasMetadata)

	e.AttachMetadata(metadata())
	s.Equal(FlagHasMetadata, e.Flags)
	e.DetachMetadata()
	s.Zero(e.Flags)
}

func (s *EndorsementSuite) TestInvalidSignatureDoesNotSetBit() {
	e := s.newEndorsement()
	e.Signature = &vdxf.SignatureData{SystemID: vdxf.Namespace}
	e.SetFlags()
	s.Zero(e.Flags & FlagHasSignature)

	out, err := e.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(plainHex, hex.EncodeToString(out))
}

func (s *EndorsementSuite) TestEncodingIgnoresStaleFlags() {
	e := s.newEndorsement()
	e.Flags = FlagHasMetadata | FlagHasSignature
	out, err := e.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(plainHex, hex.EncodeToString(out))
}

func (s *EndorsementSuite) TestDecodeFailures() {
	plain, err := hex.DecodeString(plainHex)
	s.Require().NoError(err)

	_, err = Decode(plain[:len(plain)-1], vdxf.DefaultRegistry)
	s.True(errors.Is(err, dErrors.ErrMalformedBuffer))

	_, err = Decode(append(append([]byte{}, plain...), 0x00), vdxf.DefaultRegistry)
	s.True(errors.Is(err, dErrors.ErrMalformedBuffer))

	bad := append([]byte{}, plain...)
	bad[1] = 0x04
	_, err = Decode(bad, vdxf.DefaultRegistry)
	s.True(errors.Is(err, dErrors.ErrMalformedBuffer))

	signedFlag := append([]byte{}, plain...)
	signedFlag[1] = byte(FlagHasSignature)
	_, err = Decode(signedFlag, vdxf.DefaultRegistry)
	s.True(errors.Is(err, dErrors.ErrMalformedBuffer))
}

func (s *EndorsementSuite) TestJSON() {
	e := s.newEndorsement()
	e.AttachMetadata(metadata())
	s.Require().NoError(e.Sign(s.signer))

	raw, err := json.Marshal(e)
	s.Require().NoError(err)
	s.Contains(string(raw), `"reference":"`+testReference+`"`)
	s.Contains(string(raw), `"metadata":[`)
	s.Contains(string(raw), `"signature":{`)

	var back Endorsement
	s.Require().NoError(json.Unmarshal(raw, &back))
	want, err := e.MarshalBinary()
	s.Require().NoError(err)
	got, err := back.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(want, got)

	s.Run("stale flags hide present values", func() {
		stale := s.newEndorsement()
		stale.Metadata = metadata()
		raw, err := json.Marshal(stale)
		s.Require().NoError(err)
		s.NotContains(string(raw), "metadata")
	})

	s.Run("unflagged input values are ignored", func() {
		var in Endorsement
		s.Require().NoError(json.Unmarshal([]byte(`{"version":"1","flags":0,"endorsee":"x","message":"m","reference":"00","metadata":[]}`), &in))
		s.Nil(in.Metadata)
	})

	s.Run("bad reference", func() {
		var in Endorsement
		err := json.Unmarshal([]byte(`{"version":1,"endorsee":"x","message":"m","reference":"zz"}`), &in)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *EndorsementSuite) TestIdentityUpdate() {
	e := s.newEndorsement()
	update, err := e.ToIdentityUpdateJSON(vdxf.EndorsementEmploymentPersonalKey.ID)
	s.Require().NoError(err)
	keys, err := update.Keys()
	s.Require().NoError(err)
	s.Equal([]vdxf.Identifier{vdxf.EndorsementEmploymentPersonalKey.ID}, keys)
	blobs, err := update.Serialized(vdxf.EndorsementEmploymentPersonalKey.ID)
	s.Require().NoError(err)
	s.Equal([][]byte{mustHex(plainHex)}, blobs)

	_, err = e.ToIdentityUpdateJSON(vdxf.Identifier{})
	s.NoError(err)

	_, err = e.ToIdentityUpdateJSON(vdxf.ClaimKey.ID)
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))
}

func (s *EndorsementSuite) TestStoreMultipleEndorsements() {
	e1 := s.newEndorsement()
	e2 := s.newEndorsement()
	e2.AttachMetadata(metadata())
	s.Require().NoError(e2.Sign(s.signer))

	m, err := StoreMultipleEndorsements(vdxf.EndorsementEmploymentPersonalKey.ID, []*Endorsement{e1, e2})
	s.Require().NoError(err)
	s.Equal([]vdxf.Identifier{vdxf.EndorsementEmploymentPersonalKey.ID}, m.Keys())

	out, err := m.MarshalBinary()
	s.Require().NoError(err)
	decoded, err := vdxf.DecodeContentMultiMap(out, vdxf.DefaultRegistry)
	s.Require().NoError(err)
	back, err := UnpackEndorsements(decoded, vdxf.EndorsementEmploymentPersonalKey.ID, vdxf.DefaultRegistry)
	s.Require().NoError(err)
	s.Require().Len(back, 2)
	for i, e := range []*Endorsement{e1, e2} {
		want, err := e.MarshalBinary()
		s.Require().NoError(err)
		got, err := back[i].MarshalBinary()
		s.Require().NoError(err)
		s.Equal(want, got)
	}

	_, err = StoreMultipleEndorsements(vdxf.ClaimSkillKey.ID, []*Endorsement{e1})
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
