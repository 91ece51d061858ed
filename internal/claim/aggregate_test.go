package claim

import (
	"encoding/hex"
	"errors"

	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// partialIdentityPrefix is the version, flags, parent and name fields that
// precede the content multimap in the recorded identity update.
const partialIdentityPrefix = "8f02030000000774657374696431"

func (s *ClaimSuite) employmentRecord(title, dates, id string) *Record {
	data := vdxf.Object{}
	for _, kv := range [][2]string{
		{"title", title},
		{"organization", "ACME Widgets"},
		{"body", "Body of claim goes here, what you have done, what you have achieved."},
		{"dates", dates},
		{"issued", "2025-02-02"},
		{"id", id},
	} {
		s.Require().NoError(data.Set(kv[0], kv[1]))
	}
	return NewRecord(TypeEmployment, data, Tagged())
}

func (s *ClaimSuite) TestStoreMultipleRecordsMatchesFixture() {
	fixture := hex.EncodeToString(s.readHex("employment_claims_partial_identity.hex"))
	s.Require().True(len(fixture) > len(partialIdentityPrefix))
	s.Require().Equal(partialIdentityPrefix, fixture[:len(partialIdentityPrefix)])
	want := fixture[len(partialIdentityPrefix):]

	records := []*Record{
		s.employmentRecord("Developer", "2019-2020", fixtureRef1),
		s.employmentRecord("Chief Developer", "2021-2024", fixtureRef2),
	}
	m, err := StoreMultipleRecords(records)
	s.Require().NoError(err)

	out, err := m.MarshalBinary()
	s.Require().NoError(err)
	s.Equal(want, hex.EncodeToString(out))
	s.Equal(len(out), m.ByteLength())

	decoded, err := vdxf.DecodeContentMultiMap(out, vdxf.DefaultRegistry)
	s.Require().NoError(err)
	stored, err := UnpackClaims(decoded, UnpackOptions{RecordFormat: FormatDocumentTagged})
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	for i, st := range stored {
		s.Nil(st.Claim)
		s.Equal(FormatDocumentTagged, st.Format())
		s.Equal(TypeEmployment, st.Record.Type)
		want, err := records[i].MarshalBinary()
		s.Require().NoError(err)
		got, err := st.Record.MarshalBinary()
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *ClaimSuite) TestStoreMultipleClaims() {
	c1 := New(TypeEmployment)
	s.Require().NoError(c1.CreateClaimData(Fields{Title: "Developer", Organization: "ACME Widgets", Body: "b", ReferenceID: fixtureRef1}))
	c2 := New(TypeSkill)
	s.Require().NoError(c2.CreateClaimData(skillFields()))

	m, err := StoreMultipleClaims([]*Claim{c1, c2})
	s.Require().NoError(err)
	s.Equal([]vdxf.Identifier{vdxf.ClaimKey.ID}, m.Keys())
	values := m.Get(vdxf.ClaimKey.ID)
	s.Require().Len(values, 2)

	for i, c := range []*Claim{c1, c2} {
		want, err := c.MarshalBinary()
		s.Require().NoError(err)
		d := values[i].Descriptors()[0]
		s.Equal(want, d.ObjectData)
		id, _ := c.Vdxfid()
		s.Equal(id.String(), d.Label)
		s.Equal(vdxf.FlagLabelPresent, d.ComputeFlags())
	}

	out, err := m.MarshalBinary()
	s.Require().NoError(err)
	decoded, err := vdxf.DecodeContentMultiMap(out, vdxf.DefaultRegistry)
	s.Require().NoError(err)
	stored, err := UnpackClaims(decoded, UnpackOptions{})
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	s.Equal(TypeEmployment, stored[0].Claim.Type)
	s.Equal(TypeSkill, stored[1].Claim.Type)
	s.Equal(FormatDescriptorSequence, stored[1].Format())
	ref, err := stored[0].Claim.ReferenceID()
	s.Require().NoError(err)
	s.Equal(fixtureRef1, ref.String())
}

func (s *ClaimSuite) TestStoreMultipleClaimsRejectsUnknownType() {
	_, err := StoreMultipleClaims([]*Claim{New("bogus")})
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))

	_, err = StoreMultipleRecords([]*Record{NewRecord("", vdxf.Object{})})
	s.True(errors.Is(err, dErrors.ErrMissingRequiredField))
}

func (s *ClaimSuite) TestUnpackRejectsUnknownLabel() {
	u := vdxf.NewUniValue()
	u.AppendDescriptor(vdxf.NewDataDescriptor([]byte{0x01}, vdxf.WithLabel(vdxf.EndorsementEmploymentPersonalKey.ID.String())))
	m := vdxf.NewContentMultiMap()
	m.Add(vdxf.ClaimKey.ID, u)
	_, err := UnpackClaims(m, UnpackOptions{})
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))
}
