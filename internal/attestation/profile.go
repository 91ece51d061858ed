package attestation

import (
	"valu/internal/vdxf"
)

// Document is the primary identity document.
type Document struct {
	Type        string `json:"type"`
	Number      string `json:"number"`
	ValidUntil  string `json:"validUntil"`
	DateOfBirth string `json:"dob"`
	Country     string `json:"country"`
	// FrontImageHash is the hash of the document's front image.
	FrontImageHash string `json:"frontImageHash"`
}

// Address is a home address.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Review is the verification outcome.
type Review struct {
	Answer string `json:"answer"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// Profile is a provider-neutral verified applicant.
type Profile struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth string    `json:"dob"`
	Gender      string    `json:"gender"`
	Nationality string    `json:"nationality"`
	Document    *Document `json:"document,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     *Address  `json:"address,omitempty"`
	AccountID   string    `json:"accountId"`
	CreatedAt   string    `json:"createdAt"`
	Review      *Review   `json:"review,omitempty"`
}

var _ Source = (*Profile)(nil)

// Fields lists the profile in attestation order: personal data, passport
// data, contact, address, account, then review.
func (p *Profile) Fields() []Field {
	out := []Field{
		{vdxf.IdentityFirstNameKey.Name, p.FirstName},
		{vdxf.IdentityLastNameKey.Name, p.LastName},
		{vdxf.IdentityDateOfBirthKey.Name, p.DateOfBirth},
		{vdxf.IdentityGenderKey.Name, p.Gender},
		{vdxf.IdentityNationalityKey.Name, p.Nationality},
	}
	if d := p.Document; d != nil && d.Type == DocTypePassport {
		out = append(out,
			Field{vdxf.PassportIDNumberKey.Name, d.Number},
			Field{vdxf.PassportExpirationKey.Name, d.ValidUntil},
			Field{vdxf.PassportDateOfBirthKey.Name, d.DateOfBirth},
			Field{vdxf.PassportCountryKey.Name, d.Country},
			Field{vdxf.PassportOriginalFrontKey.Name, d.FrontImageHash},
		)
	}
	out = append(out,
		Field{vdxf.IdentityEmailKey.Name, p.Email},
		Field{vdxf.IdentityPhoneNumberKey.Name, p.Phone},
	)
	if a := p.Address; a != nil {
		out = append(out,
			Field{vdxf.HomeAddressStreet1Key.Name, a.Street},
			Field{vdxf.HomeAddressCityKey.Name, a.City},
			Field{vdxf.HomeAddressRegionKey.Name, a.Region},
			Field{vdxf.HomeAddressPostcodeKey.Name, a.Postcode},
			Field{vdxf.HomeAddressCountryKey.Name, a.Country},
		)
	}
	out = append(out,
		Field{vdxf.IdentityAccountIDKey.Name, p.AccountID},
		Field{vdxf.IdentityAccountCreatedKey.Name, p.CreatedAt},
	)
	if r := p.Review; r != nil {
		out = append(out, Field{vdxf.IdentityVerificationKey.Name, r.Answer})
		if r.Status == ReviewCompleted {
			out = append(out, Field{vdxf.IdentityAccountCompletedKey.Name, r.Date})
		}
	}
	return out
}
