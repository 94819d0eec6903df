package cda

import (
	"fmt"
	"strings"
	"unicode"
)

// IdentifierType ranks a patient identifier for primary selection.
type IdentifierType string

const (
	IdentifierPrimary   IdentifierType = "primary"
	IdentifierSecondary IdentifierType = "secondary"
	IdentifierNational  IdentifierType = "national"
	IdentifierLocal     IdentifierType = "local"
)

// PatientIdentifier is one id element from the patient role. The extension is
// the identifier value and must be non-empty.
type PatientIdentifier struct {
	Extension          string         `json:"extension"`
	Root               string         `json:"root,omitempty"`
	AssigningAuthority string         `json:"assigning_authority_name,omitempty"`
	Type               IdentifierType `json:"identifier_type"`
}

// NewPatientIdentifier constructs an identifier, failing when the extension
// is empty: an identifier without a value identifies nothing.
func NewPatientIdentifier(extension, root, authority string, idType IdentifierType) (PatientIdentifier, error) {
	if strings.TrimSpace(extension) == "" {
		return PatientIdentifier{}, fmt.Errorf("cda: patient identifier requires a non-empty extension")
	}
	if idType == "" {
		idType = IdentifierSecondary
	}
	return PatientIdentifier{
		Extension:          strings.TrimSpace(extension),
		Root:               root,
		AssigningAuthority: authority,
		Type:               idType,
	}, nil
}

// PatientDemographics is the patient identity extracted from the header.
type PatientDemographics struct {
	GivenName     string              `json:"given_name"`
	FamilyName    string              `json:"family_name"`
	BirthDate     string              `json:"birth_date"`
	Gender        string              `json:"gender"`
	PatientID     string              `json:"patient_id"`
	Identifiers   []PatientIdentifier `json:"identifiers"`
	Address       *Address            `json:"address,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	Email         string              `json:"email,omitempty"`
	MaritalStatus string              `json:"marital_status,omitempty"`
}

// FullName joins given and family names for display.
func (p PatientDemographics) FullName() string {
	return strings.TrimSpace(strings.Join(nonEmpty(p.GivenName, p.FamilyName), " "))
}

// PrimaryIdentifier returns the identifier tagged primary, else the first in
// document order, else nil.
func (p PatientDemographics) PrimaryIdentifier() *PatientIdentifier {
	for i := range p.Identifiers {
		if p.Identifiers[i].Type == IdentifierPrimary {
			return &p.Identifiers[i]
		}
	}
	if len(p.Identifiers) > 0 {
		return &p.Identifiers[0]
	}
	return nil
}

// ExtractDemographics reads the patient role from the document header.
func ExtractDemographics(doc *Document) PatientDemographics {
	demo := PatientDemographics{Identifiers: []PatientIdentifier{}}

	role := doc.Find("recordTarget/patientRole")
	if role == nil {
		return demo
	}

	for i, id := range role.ChildAll("id") {
		idType := IdentifierSecondary
		if i == 0 {
			idType = IdentifierPrimary
		}
		ident, err := NewPatientIdentifier(id.Attr("extension"), id.Attr("root"), id.Attr("assigningAuthorityName"), idType)
		if err != nil {
			continue
		}
		demo.Identifiers = append(demo.Identifiers, ident)
	}
	if primary := demo.PrimaryIdentifier(); primary != nil {
		demo.PatientID = primary.Extension
	}

	contact := parseContactInfo(role)
	if addr := contact.PrimaryAddress(); addr != nil {
		demo.Address = addr
	}
	for _, tel := range contact.Telecoms {
		switch tel.Type {
		case TelecomPhone:
			if demo.Phone == "" {
				demo.Phone = tel.DisplayValue
			}
		case TelecomEmail:
			if demo.Email == "" {
				demo.Email = tel.DisplayValue
			}
		}
	}

	patient := role.Child("patient")
	if patient == nil {
		return demo
	}

	given, family, _ := parsePersonName(patient.Child("name"))
	demo.GivenName = given
	demo.FamilyName = family

	if gender := patient.Child("administrativeGenderCode"); gender != nil {
		raw := gender.Attr("displayName")
		if raw == "" {
			raw = gender.Attr("code")
		}
		demo.Gender = NormalizeGender(raw)
	} else {
		demo.Gender = NormalizeGender("")
	}

	if birth := patient.Child("birthTime"); birth != nil {
		demo.BirthDate = FormatBirthDate(birth.Attr("value"))
	}
	if marital := patient.Child("maritalStatusCode"); marital != nil {
		demo.MaritalStatus = marital.Attr("displayName")
		if demo.MaritalStatus == "" {
			demo.MaritalStatus = marital.Attr("code")
		}
	}
	return demo
}

// NormalizeGender maps national gender spellings onto Female/Male/Unknown.
// Normalization is idempotent: feeding an already-normalized value back in
// returns it unchanged. Unrecognized values title-case to themselves.
func NormalizeGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "f", "fem", "female", "feminino", "femminile", "feminin", "femenino", "weiblich", "w":
		return "Female"
	case "m", "male", "masculino", "maschile", "masculin", "männlich", "mann":
		return "Male"
	case "", "u", "un", "unk", "unknown", "undifferentiated":
		return "Unknown"
	}
	return titleCase(raw)
}

// titleCase uppercases the first letter of each word and lowercases the rest.
func titleCase(s string) string {
	var b strings.Builder
	atStart := true
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			atStart = true
			b.WriteRune(r)
		case atStart:
			b.WriteRune(unicode.ToUpper(r))
			atStart = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// FormatBirthDate renders HL7 compact timestamps (YYYYMMDD...) and ISO dates
// as DD/MM/YYYY. Values already in slash form pass through unchanged; values
// in no recognized shape are returned raw rather than dropped.
func FormatBirthDate(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return ""
	case len(s) >= 8 && allDigits(s[:8]):
		return s[6:8] + "/" + s[4:6] + "/" + s[:4]
	case len(s) == 10 && s[4] == '-' && s[7] == '-':
		return s[8:10] + "/" + s[5:7] + "/" + s[:4]
	case len(s) == 10 && s[2] == '/' && s[5] == '/':
		return s
	}
	return s
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
