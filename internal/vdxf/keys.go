package vdxf

// Namespace is the identity that owns the valu.vrsc:: keys.
var Namespace = MustParseIdentifier("iNQFA8jtYe9JYq6Qr49ZxAhvWErFurWjTa")

// Payload keys. Their Kind decides how a UniValue entry is decoded.
var (
	DataDescriptorKey = Key{Name: "vrsc::data.type.object.datadescriptor", ID: MustParseIdentifier("i4GC1YGEVD21afWudGoFJVdnfjJ5XWnCQv"), Kind: KindDataDescriptor}
	DataStringKey     = Key{Name: "vrsc::data.type.string", ID: MustParseIdentifier("iK7a5JNJnbeuYWVHCDRpJosj3irGJ5Qa8c"), Kind: KindString}
	DataByteVectorKey = Key{Name: "vrsc::data.type.bytevector", ID: MustParseIdentifier("iKMhRLX1JHQihVZx2t2pAWW2uzmK6AzwW3"), Kind: KindBytes}
	SignatureDataKey  = Key{Name: "vrsc::data.signaturedata", ID: MustParseIdentifier("i7PcVF9wwPtQ6p6jDtCVpohX65pTZuP2ah"), Kind: KindSignature}
	// UniValueKey has no chain registration; its id is derived locally.
	UniValueKey = derivedKey("valu.vrsc::data.univalue", KindNested)
)

// Record type keys.
var (
	ClaimKey              = Key{Name: "valu.vrsc::claim", ID: MustParseIdentifier("i4d7U1aZhmoxZbWx8AVezh6z1YewAnuw3V")}
	ClaimEmploymentKey    = Key{Name: "valu.vrsc::claim.employment", ID: MustParseIdentifier("i3bgiLuaxTr6smF8q6xLG4jvvhF1mmrkM2")}
	ClaimAchievementKey   = Key{Name: "valu.vrsc::claim.achievement", ID: MustParseIdentifier("i51jfK8wZrKa5LgF7pkbow8hV1Hv6nBm2K")}
	ClaimCertificationKey = Key{Name: "valu.vrsc::claim.certification", ID: MustParseIdentifier("iPkJZJiwZSJrgnmunhQPnkWsyY28tngW2W")}
	ClaimEducationKey     = Key{Name: "valu.vrsc::claim.education", ID: MustParseIdentifier("iJ5sikvjEbSkijSxwWQ2J197XVTzunm6kP")}
	ClaimSkillKey         = Key{Name: "valu.vrsc::claim.skill", ID: MustParseIdentifier("iEpYe4cC73H7i9ay3G8geAjD1tFAhWscvj")}
	ClaimExperienceKey    = Key{Name: "valu.vrsc::claim.experience", ID: MustParseIdentifier("iFqtB6XGZmuUKW3Bzongrnum4QAf25Hgfu")}

	ClaimStatementKey        = Key{Name: "valu.vrsc::claim.statement", ID: MustParseIdentifier("i9SktCWXuit2RLSy25K8ijvRKojuXgMJ2o")}
	ClaimSocialAccountKey    = Key{Name: "valu.vrsc::claim.socialAccount", ID: MustParseIdentifier("i97vLHSG3CnZU1jifqsxxg2p38e5DgPRup")}
	ClaimWorkExperienceKey   = Key{Name: "valu.vrsc::claim.workExperience", ID: MustParseIdentifier("i6pQWU1Y3Z1addNdnB99ytvBMkbDbwT5Tk")}
	ClaimAttestationBlockKey = Key{Name: "valu.vrsc::claim.attestationBlock", ID: MustParseIdentifier("iPfcXMw6afcW7Sjia9dk4hGDsKxEJfU5iz")}

	EndorsementEmploymentPersonalKey = Key{Name: "valu.vrsc::endorsement.employment.personal", ID: MustParseIdentifier("iD1JEZLLWPvrepAtngcrweeDeypeBSCjdw")}
)

// Attestation label keys. These are placeholders: their ids are derived from
// the names until a key file registers the chain ids under the same names.
var (
	AttestationNameKey          = derivedKey("vrsc::attestation.name", KindNone)
	AttestationRecipientKey     = derivedKey("vrsc::identity.attestation.recipient", KindNone)
	IdentityFirstNameKey        = derivedKey("vrsc::identity.firstname", KindNone)
	IdentityLastNameKey         = derivedKey("vrsc::identity.lastname", KindNone)
	IdentityMiddleNameKey       = derivedKey("vrsc::identity.middlename", KindNone)
	IdentityDateOfBirthKey      = derivedKey("vrsc::identity.dateofbirth", KindNone)
	IdentityGenderKey           = derivedKey("vrsc::identity.gender", KindNone)
	IdentityNationalityKey      = derivedKey("vrsc::identity.nationality", KindNone)
	IdentityEmailKey            = derivedKey("vrsc::identity.email", KindNone)
	IdentityPhoneNumberKey      = derivedKey("vrsc::identity.phonenumber", KindNone)
	HomeAddressStreet1Key       = derivedKey("vrsc::identity.homeaddress.street1", KindNone)
	HomeAddressStreet2Key       = derivedKey("vrsc::identity.homeaddress.street2", KindNone)
	HomeAddressCityKey          = derivedKey("vrsc::identity.homeaddress.city", KindNone)
	HomeAddressRegionKey        = derivedKey("vrsc::identity.homeaddress.region", KindNone)
	HomeAddressPostcodeKey      = derivedKey("vrsc::identity.homeaddress.postcode", KindNone)
	HomeAddressCountryKey       = derivedKey("vrsc::identity.homeaddress.country", KindNone)
	IdentityVerificationKey     = derivedKey("vrsc::identity.verification.status", KindNone)
	IdentityAccountIDKey        = derivedKey("vrsc::identity.account.id", KindNone)
	IdentityAccountCreatedKey   = derivedKey("vrsc::identity.account.createdat", KindNone)
	IdentityAccountCompletedKey = derivedKey("vrsc::identity.account.completedat", KindNone)
	PassportIDNumberKey         = derivedKey("vrsc::identity.passport.idnumber", KindNone)
	PassportExpirationKey       = derivedKey("vrsc::identity.passport.expirationdate", KindNone)
	PassportDateOfBirthKey      = derivedKey("vrsc::identity.passport.dateofbirth", KindNone)
	PassportCountryKey          = derivedKey("vrsc::identity.passport.address.country", KindNone)
	PassportOriginalFrontKey    = derivedKey("vrsc::identity.passport.originalfront", KindNone)
)

func derivedKey(name string, kind Kind) Key {
	return Key{Name: name, ID: DeriveIdentifier(name), Kind: kind, Placeholder: true}
}

// DefaultRegistry holds every key this module knows about. It is built once
// at init and never mutated.
var DefaultRegistry = mustRegistry(
	DataDescriptorKey, DataStringKey, DataByteVectorKey, SignatureDataKey, UniValueKey,
	ClaimKey, ClaimEmploymentKey, ClaimAchievementKey, ClaimCertificationKey,
	ClaimEducationKey, ClaimSkillKey, ClaimExperienceKey,
	ClaimStatementKey, ClaimSocialAccountKey, ClaimWorkExperienceKey, ClaimAttestationBlockKey,
	EndorsementEmploymentPersonalKey,
	AttestationNameKey, AttestationRecipientKey,
	IdentityFirstNameKey, IdentityLastNameKey, IdentityMiddleNameKey, IdentityDateOfBirthKey,
	IdentityGenderKey, IdentityNationalityKey, IdentityEmailKey, IdentityPhoneNumberKey,
	HomeAddressStreet1Key, HomeAddressStreet2Key, HomeAddressCityKey, HomeAddressRegionKey,
	HomeAddressPostcodeKey, HomeAddressCountryKey,
	IdentityVerificationKey, IdentityAccountIDKey, IdentityAccountCreatedKey, IdentityAccountCompletedKey,
	PassportIDNumberKey, PassportExpirationKey, PassportDateOfBirthKey, PassportCountryKey, PassportOriginalFrontKey,
)

func mustRegistry(keys ...Key) *Registry {
	r, err := NewRegistry(keys...)
	if err != nil {
		panic(err)
	}
	return r
}
