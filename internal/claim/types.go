// Package claim builds typed claim records and packs them into a content
// multi-map. Two encodings coexist: the descriptor sequence (Claim) and the
// single JSON document (Record). Which one a stored entry uses is decided by
// the label it was persisted under, never by sniffing its bytes.
package claim

import (
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// Type is a claim type tag.
type Type string

const (
	TypeExperience       Type = "experience"
	TypeAchievement      Type = "achievement"
	TypeCertification    Type = "certification"
	TypeEducation        Type = "education"
	TypeEmployment       Type = "employment"
	TypeSkill            Type = "skill"
	TypeStatement        Type = "statement"
	TypeSocialAccount    Type = "socialAccount"
	TypeWorkExperience   Type = "workExperience"
	TypeAttestationBlock Type = "attestationBlock"
)

// Types lists every known type in tag order followed by the later additions.
var Types = []Type{
	TypeExperience, TypeAchievement, TypeCertification, TypeEducation, TypeEmployment, TypeSkill,
	TypeStatement, TypeSocialAccount, TypeWorkExperience, TypeAttestationBlock,
}

// numeric tags written by tagged documents
var typeTags = map[Type]uint64{
	TypeExperience:    0,
	TypeAchievement:   1,
	TypeCertification: 2,
	TypeEducation:     3,
	TypeEmployment:    4,
	TypeSkill:         5,
}

// ParseType validates s against the known types.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	if s == "" {
		return "", dErrors.New(dErrors.CodeMissingRequiredField, "claim type is required")
	}
	return "", dErrors.New(dErrors.CodeUnsupportedType, "unsupported claim type: "+s)
}

func (t Type) String() string { return string(t) }

// Tag returns the numeric tag used by tagged documents. Only the six
// original types have one.
func (t Type) Tag() (uint64, error) {
	tag, ok := typeTags[t]
	if !ok {
		return 0, dErrors.New(dErrors.CodeUnsupportedType, "claim type has no numeric tag: "+string(t))
	}
	return tag, nil
}

// TypeFromTag is the inverse of Tag.
func TypeFromTag(tag uint64) (Type, error) {
	for t, v := range typeTags {
		if v == tag {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeUnsupportedType, "unknown claim type tag")
}

// Mapping selects how types resolve to identifiers.
type Mapping string

const (
	// MappingCurrent gives every type its own identifier.
	MappingCurrent Mapping = "current"
	// MappingLegacy knows only the six original types and files experience
	// under the employment identifier.
	MappingLegacy Mapping = "legacy"
)

func ParseMapping(s string) (Mapping, error) {
	switch Mapping(s) {
	case MappingCurrent, MappingLegacy:
		return Mapping(s), nil
	case "":
		return MappingCurrent, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown claim mapping: "+s)
}

var currentIDs = map[Type]vdxf.Identifier{
	TypeExperience:       vdxf.ClaimExperienceKey.ID,
	TypeAchievement:      vdxf.ClaimAchievementKey.ID,
	TypeCertification:    vdxf.ClaimCertificationKey.ID,
	TypeEducation:        vdxf.ClaimEducationKey.ID,
	TypeEmployment:       vdxf.ClaimEmploymentKey.ID,
	TypeSkill:            vdxf.ClaimSkillKey.ID,
	TypeStatement:        vdxf.ClaimStatementKey.ID,
	TypeSocialAccount:    vdxf.ClaimSocialAccountKey.ID,
	TypeWorkExperience:   vdxf.ClaimWorkExperienceKey.ID,
	TypeAttestationBlock: vdxf.ClaimAttestationBlockKey.ID,
}

var legacyIDs = map[Type]vdxf.Identifier{
	TypeExperience:    vdxf.ClaimEmploymentKey.ID,
	TypeAchievement:   vdxf.ClaimAchievementKey.ID,
	TypeCertification: vdxf.ClaimCertificationKey.ID,
	TypeEducation:     vdxf.ClaimEducationKey.ID,
	TypeEmployment:    vdxf.ClaimEmploymentKey.ID,
	TypeSkill:         vdxf.ClaimSkillKey.ID,
}

func (m Mapping) table() map[Type]vdxf.Identifier {
	if m == MappingLegacy {
		return legacyIDs
	}
	return currentIDs
}

// TypeToVdxfid resolves t under mapping m. It has no side effects.
func TypeToVdxfid(t Type, m Mapping) (vdxf.Identifier, error) {
	if t == "" {
		return vdxf.Identifier{}, dErrors.New(dErrors.CodeMissingRequiredField, "claim type is required")
	}
	id, ok := m.table()[t]
	if !ok {
		return vdxf.Identifier{}, dErrors.New(dErrors.CodeUnsupportedType, "unsupported claim type: "+string(t))
	}
	return id, nil
}

// TypeFromVdxfid is the reverse lookup. Under the legacy mapping the shared
// employment identifier resolves to employment.
func TypeFromVdxfid(id vdxf.Identifier, m Mapping) (Type, error) {
	for _, t := range Types {
		if v, ok := m.table()[t]; ok && v == id && !(m == MappingLegacy && t == TypeExperience) {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeUnsupportedType, "identifier is not a claim type: "+id.String())
}
