package attestation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

type AttestationSuite struct {
	suite.Suite
	profile *Profile
}

func TestAttestationSuite(t *testing.T) {
	suite.Run(t, new(AttestationSuite))
}

func (s *AttestationSuite) SetupTest() {
	s.profile = &Profile{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: "1815-12-10",
		Nationality: "GBR",
		Document: &Document{
			Type: DocTypePassport, Number: "P123", ValidUntil: "2030-01-01",
			DateOfBirth: "1815-12-10", Country: "GBR", FrontImageHash: "abc",
		},
		Email:     "ada@example.com",
		Address:   &Address{Street: "1 Main St", City: "London", Country: "GBR"},
		AccountID: "acc-1",
		CreatedAt: "2025-01-01",
		Review:    &Review{Answer: "GREEN", Status: ReviewCompleted, Date: "2025-01-02"},
	}
}

func labels(ds []*vdxf.DataDescriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Label
	}
	return out
}

func (s *AttestationSuite) descriptors() []*vdxf.DataDescriptor {
	ds, err := Descriptors(vdxf.DefaultRegistry, s.profile)
	s.Require().NoError(err)
	return ds
}

func (s *AttestationSuite) TestDescriptorsSkipEmptyValues() {
	ds := s.descriptors()
	s.Equal([]string{
		vdxf.IdentityFirstNameKey.ID.String(),
		vdxf.IdentityLastNameKey.ID.String(),
		vdxf.IdentityDateOfBirthKey.ID.String(),
		vdxf.IdentityNationalityKey.ID.String(),
		vdxf.PassportIDNumberKey.ID.String(),
		vdxf.PassportExpirationKey.ID.String(),
		vdxf.PassportDateOfBirthKey.ID.String(),
		vdxf.PassportCountryKey.ID.String(),
		vdxf.PassportOriginalFrontKey.ID.String(),
		vdxf.IdentityEmailKey.ID.String(),
		vdxf.HomeAddressStreet1Key.ID.String(),
		vdxf.HomeAddressCityKey.ID.String(),
		vdxf.HomeAddressCountryKey.ID.String(),
		vdxf.IdentityAccountIDKey.ID.String(),
		vdxf.IdentityAccountCreatedKey.ID.String(),
		vdxf.IdentityVerificationKey.ID.String(),
		vdxf.IdentityAccountCompletedKey.ID.String(),
	}, labels(ds))
	for _, d := range ds {
		s.Equal(vdxf.FlagLabelPresent|vdxf.FlagMimeTypePresent, d.ComputeFlags())
		s.Equal(vdxf.MimeTextPlain, d.MimeType)
	}
	s.Equal("Ada", string(ds[0].ObjectData))
}

func (s *AttestationSuite) TestNonPassportAndPendingReview() {
	s.profile.Document.Type = "ID_CARD"
	s.profile.Review.Status = "pending"
	for _, l := range labels(s.descriptors()) {
		s.NotEqual(vdxf.PassportIDNumberKey.ID.String(), l)
		s.NotEqual(vdxf.IdentityAccountCompletedKey.ID.String(), l)
	}
}

func (s *AttestationSuite) TestProofOfLife() {
	ds, err := ProofOfLifeDescriptors(vdxf.DefaultRegistry, s.profile, "attestor@", "Proof of life")
	s.Require().NoError(err)
	n := len(ds)
	s.Equal(vdxf.AttestationNameKey.ID.String(), ds[n-2].Label)
	s.Equal("Proof of life", string(ds[n-2].ObjectData))
	s.Equal(vdxf.AttestationRecipientKey.ID.String(), ds[n-1].Label)
	s.Equal("attestor@", string(ds[n-1].ObjectData))

	_, err = ProofOfLifeDescriptors(vdxf.DefaultRegistry, s.profile, "", "t")
	s.True(dErrors.HasCode(err, dErrors.CodeMissingRequiredField))
}

func (s *AttestationSuite) TestMMRDataPutsMetadataFirst() {
	mmr, err := MMRData(vdxf.DefaultRegistry, s.profile, "alice@", "KYC", "RAddress")
	s.Require().NoError(err)
	ds := mmr.Descriptors()
	s.Equal(vdxf.AttestationNameKey.ID.String(), ds[0].Label)
	s.Equal(vdxf.AttestationRecipientKey.ID.String(), ds[1].Label)
	s.Equal("alice@", string(ds[1].ObjectData))
	s.Equal(vdxf.AttestationRecipientKey.ID.String(), ds[2].Label)
	s.Equal("RAddress", string(ds[2].ObjectData))
	s.Equal(vdxf.IdentityFirstNameKey.ID.String(), ds[3].Label)
	s.Len(ds, 3+len(s.descriptors()))

	raw, err := json.Marshal(mmr)
	s.Require().NoError(err)
	var back vdxf.MMRData
	s.Require().NoError(json.Unmarshal(raw, &back))
	s.Equal(labels(ds), labels(back.Descriptors()))

	for _, args := range [][3]string{{"", "t", "p"}, {"i", "", "p"}, {"i", "t", ""}} {
		_, err := MMRData(vdxf.DefaultRegistry, s.profile, args[0], args[1], args[2])
		s.True(dErrors.HasCode(err, dErrors.CodeMissingRequiredField))
	}
}

func (s *AttestationSuite) TestLabelsFollowRegisteredIDs() {
	firstName := vdxf.DeriveIdentifier("chain.vrsc::identity.firstname")
	title := vdxf.DeriveIdentifier("chain.vrsc::attestation.name")
	s.Require().NotEqual(firstName, vdxf.IdentityFirstNameKey.ID)

	reg, err := vdxf.LoadKeys(vdxf.DefaultRegistry, strings.NewReader(`
[[key]]
name = "vrsc::identity.firstname"
id   = "`+firstName.String()+`"

[[key]]
name = "vrsc::attestation.name"
id   = "`+title.String()+`"
`))
	s.Require().NoError(err)

	mmr, err := MMRData(reg, s.profile, "alice@", "KYC", "RAddress")
	s.Require().NoError(err)
	ds := mmr.Descriptors()
	s.Equal(title.String(), ds[0].Label)
	s.Equal(firstName.String(), ds[3].Label)
	s.Equal(vdxf.IdentityLastNameKey.ID.String(), ds[4].Label)
}

func (s *AttestationSuite) TestUnregisteredNameIsRejected() {
	reg, err := vdxf.NewRegistry(vdxf.IdentityLastNameKey)
	s.Require().NoError(err)
	_, err = Descriptors(reg, s.profile)
	s.True(errors.Is(err, dErrors.ErrUnsupportedType))
}
