package claim

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strings"

	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

func (s *ClaimSuite) TestRecordBinary() {
	data := vdxf.Object{}
	s.Require().NoError(data.Set("a", "b"))

	r := NewRecord(TypeSkill, data)
	out, err := r.MarshalBinary()
	s.Require().NoError(err)
	s.Equal("0100"+vdxf.ClaimSkillKey.ID.Hex()+"097b2261223a2262227d", hex.EncodeToString(out))
	s.Equal(len(out), r.ByteLength())
	s.True(r.IsValid())

	back, err := DecodeRecord(out, FormatDocument, MappingCurrent)
	s.Require().NoError(err)
	s.Equal(TypeSkill, back.Type)
	s.Equal([]string{"a"}, back.Data.Keys())

	tagged := NewRecord(TypeSkill, data, Tagged())
	out, err = tagged.MarshalBinary()
	s.Require().NoError(err)
	s.Equal("010005097b2261223a2262227d", hex.EncodeToString(out))
	s.Equal(FormatDocumentTagged, tagged.Format())
}

func (s *ClaimSuite) TestRecordFailures() {
	_, err := NewRecord(TypeStatement, vdxf.Object{}, Tagged()).MarshalBinary()
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))
	s.Zero(NewRecord(TypeStatement, vdxf.Object{}, Tagged()).ByteLength())

	_, err = DecodeRecord([]byte{0x01, 0x00, 0x05, 0x02, '[', ']'}, FormatDocumentTagged, MappingCurrent)
	s.True(errors.Is(err, dErrors.ErrMalformedBuffer))

	_, err = DecodeRecord([]byte{0x01, 0x00, 0x05, 0x02, '{', '}', 0x00}, FormatDocumentTagged, MappingCurrent)
	s.True(errors.Is(err, dErrors.ErrMalformedBuffer))

	_, err = DecodeRecord([]byte{0x01, 0x00, 0x09, 0x02, '{', '}'}, FormatDocumentTagged, MappingCurrent)
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))

	_, err = DecodeRecord([]byte{0x01}, FormatDescriptorSequence, MappingCurrent)
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))

	r := NewRecord(TypeSkill, vdxf.Object{})
	r.Version = big.NewInt(2)
	s.False(r.IsValid())
}

func (s *ClaimSuite) TestRecordSetDataMerges() {
	data := vdxf.Object{}
	s.Require().NoError(data.Set("title", "a"))
	s.Require().NoError(data.Set("body", "b"))
	r := NewRecord(TypeEducation, data)

	overlay := vdxf.Object{}
	s.Require().NoError(overlay.Set("extra", 1))
	s.Require().NoError(overlay.Set("title", "z"))
	r.SetData(overlay)

	doc, err := r.Data.MarshalJSON()
	s.Require().NoError(err)
	s.Equal(`{"title":"z","body":"b","extra":1}`, string(doc))
}

func (s *ClaimSuite) TestRecordIdentityUpdateAndMMR() {
	r := NewRecord(TypeSkill, vdxf.Object{})
	body, err := r.MarshalBinary()
	s.Require().NoError(err)

	update, err := r.ToIdentityUpdateJSON()
	s.Require().NoError(err)
	blobs, err := update.Serialized(vdxf.ClaimKey.ID)
	s.Require().NoError(err)
	s.Require().Len(blobs, 1)
	var d vdxf.DataDescriptor
	s.Require().NoError(d.UnmarshalBinary(blobs[0]))
	s.Empty(d.Label)
	s.Equal(body, d.ObjectData)

	mmr, err := r.ToMMRData("alice@")
	s.Require().NoError(err)
	s.Require().Len(mmr, 2)
	s.Equal(vdxf.ClaimKey.ID.String(), mmr[0].Descriptor.Label)
	s.Equal(LabelReceivingIdentity, mmr[1].Descriptor.Label)

	mmr, err = r.ToMMRData("")
	s.Require().NoError(err)
	s.Len(mmr, 1)

	raw, err := json.Marshal(mmr)
	s.Require().NoError(err)
	s.Contains(string(raw), `"label":"i4d7U1aZhmoxZbWx8AVezh6z1YewAnuw3V"`)
}

func (s *ClaimSuite) TestRecordFromFields() {
	f := Fields{
		Title:        "Go",
		Organization: "ACME",
		Body:         "Ships code",
		Issued:       "2025-02-02",
		Extra:        []Field{{Label: "level", Value: "senior"}},
	}
	random := bytes.NewReader(bytes.Repeat([]byte{0x22}, 32))

	r, err := RecordFromFields(TypeSkill, f, random, Tagged())
	s.Require().NoError(err)
	s.Equal(FormatDocumentTagged, r.Format())

	doc, err := r.Data.MarshalJSON()
	s.Require().NoError(err)
	s.Equal(`{"title":"Go","organization":"ACME","body":"Ships code","issued":"2025-02-02","level":"senior",`+
		`"referenceID":"`+strings.Repeat("22", 32)+`"}`, string(doc))

	out, err := r.MarshalBinary()
	s.Require().NoError(err)
	back, err := DecodeRecord(out, FormatDocumentTagged, MappingCurrent)
	s.Require().NoError(err)
	again, err := back.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(out, again)

	s.Run("failures", func() {
		_, err := RecordFromFields("", f, nil)
		s.True(errors.Is(err, dErrors.ErrMissingRequiredField))
		_, err = RecordFromFields(TypeStatement, f, nil, Tagged())
		s.True(errors.Is(err, dErrors.ErrUnsupportedType))
		_, err = RecordFromFields(TypeSkill, Fields{Title: "Go"}, nil)
		s.True(errors.Is(err, dErrors.ErrMissingRequiredField))
		bad := f
		bad.ReferenceID = "abc"
		_, err = RecordFromFields(TypeSkill, bad, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
