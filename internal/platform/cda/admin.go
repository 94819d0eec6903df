package cda

import (
	"fmt"
	"strings"
)

// OrganizationInfo is an organization actor with its contact details.
type OrganizationInfo struct {
	Name    string      `json:"name,omitempty"`
	Contact ContactInfo `json:"contact_info"`
	Type    string      `json:"organization_type,omitempty"`
}

// HasData reports whether anything was extracted for the organization.
func (o OrganizationInfo) HasData() bool {
	return o.Name != "" || o.Contact.HasData()
}

// PersonInfo is a human actor (author, authenticator, guardian, contact)
// with their organization and contact details.
type PersonInfo struct {
	FamilyName   string           `json:"family_name,omitempty"`
	GivenName    string           `json:"given_name,omitempty"`
	Title        string           `json:"title,omitempty"`
	Role         string           `json:"role,omitempty"`
	Specialty    string           `json:"specialty,omitempty"`
	FullName     string           `json:"full_name,omitempty"`
	Organization OrganizationInfo `json:"organization"`
	Contact      ContactInfo      `json:"contact_info"`
}

// HasData reports whether anything was extracted for the person.
func (p PersonInfo) HasData() bool {
	return p.FullName != "" || p.Organization.HasData() || p.Contact.HasData()
}

// AdministrativeData aggregates every human and organizational actor of the
// document header. Every sub-record is present even when its source element
// is missing, so callers check fields, never records.
type AdministrativeData struct {
	PatientContact     ContactInfo      `json:"patient_contact_info"`
	Author             PersonInfo       `json:"author_hcp"`
	LegalAuthenticator PersonInfo       `json:"legal_authenticator"`
	Custodian          OrganizationInfo `json:"custodian_organization"`
	Guardian           PersonInfo       `json:"guardian"`
	OtherContacts      []PersonInfo     `json:"other_contacts"`
	PreferredHCP       OrganizationInfo `json:"preferred_hcp"`
}

// Header participant classifications. Different countries populate different
// typeCode/functionCode/classCode/relationship combinations for semantically
// equivalent roles, so matching is by combination, not by a single path.
const (
	RoleAuthor             = "Author"
	RoleLegalAuthenticator = "Legal Authenticator"
	RoleGuardian           = "Guardian"
	RolePrimaryCare        = "Primary Care Provider"
	RoleEmergencyFamily    = "Emergency Contact (Family Member)"
	RoleEmergencyContact   = "Emergency Contact"
	RoleOtherContact       = "Other Contact"
)

// ExtractAdministrative walks the document header and produces a fully
// populated AdministrativeData. Each role runs under its own recover guard;
// a failing role keeps its empty default and the others proceed.
func ExtractAdministrative(doc *Document) (AdministrativeData, []error) {
	data := AdministrativeData{OtherContacts: []PersonInfo{}}
	var errs []error

	guard := func(role string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				errs = append(errs, &RoleError{Role: role, Err: fmt.Errorf("%v", r)})
			}
		}()
		fn()
	}

	guard("patient contact", func() {
		data.PatientContact = parseContactInfo(doc.Find("recordTarget/patientRole"))
	})
	guard("author", func() { data.Author = extractAuthor(doc) })
	guard("legal authenticator", func() { data.LegalAuthenticator = extractLegalAuthenticator(doc) })
	guard("custodian", func() { data.Custodian = extractCustodian(doc) })
	guard("guardian", func() { data.Guardian = extractGuardian(doc) })
	guard("participants", func() {
		data.OtherContacts, data.PreferredHCP = extractParticipants(doc)
	})

	return data, errs
}

// buildPerson assembles a PersonInfo from a name-bearing child and an
// organization-bearing sibling, the two primitives every role extractor
// shares. The anchor contributes addr/telecom children.
func buildPerson(role string, name, org, anchor *Element) PersonInfo {
	given, family, prefix := parsePersonName(name)
	p := PersonInfo{
		GivenName:    given,
		FamilyName:   family,
		Title:        prefix,
		Role:         role,
		Organization: parseOrganization(org, ""),
		Contact:      parseContactInfo(anchor),
	}
	p.FullName = strings.TrimSpace(strings.Join(nonEmpty(given, family), " "))
	return p
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseOrganization extracts name, addresses and telecoms from any
// representedOrganization-shaped element.
func parseOrganization(el *Element, orgType string) OrganizationInfo {
	org := OrganizationInfo{Type: orgType, Contact: ContactInfo{Addresses: []Address{}, Telecoms: []Telecom{}}}
	if el == nil {
		return org
	}
	org.Name = el.Child("name").FlatText()
	org.Contact = parseContactInfo(el)
	return org
}

// extractAuthor reads the first author with an assignedPerson. Documents with
// duplicated author elements (device author plus person author) are common;
// the person wins, the first author is the fallback.
func extractAuthor(doc *Document) PersonInfo {
	authors := doc.Root.ChildAll("author")
	var chosen *Element
	for _, a := range authors {
		if a.Find("assignedAuthor/assignedPerson") != nil {
			chosen = a
			break
		}
	}
	if chosen == nil && len(authors) > 0 {
		chosen = authors[0]
	}
	if chosen == nil {
		return PersonInfo{Role: RoleAuthor}
	}

	assigned := chosen.Child("assignedAuthor")
	p := buildPerson(RoleAuthor,
		assigned.Find("assignedPerson/name"),
		assigned.Child("representedOrganization"),
		assigned)
	if code := assigned.Child("code"); code != nil {
		p.Specialty = code.Attr("displayName")
		if p.Specialty == "" {
			p.Specialty = code.Attr("code")
		}
	}
	return p
}

func extractLegalAuthenticator(doc *Document) PersonInfo {
	entity := doc.Find("legalAuthenticator/assignedEntity")
	if entity == nil {
		return PersonInfo{Role: RoleLegalAuthenticator}
	}
	return buildPerson(RoleLegalAuthenticator,
		entity.Find("assignedPerson/name"),
		entity.Child("representedOrganization"),
		entity)
}

func extractCustodian(doc *Document) OrganizationInfo {
	org := doc.Find("custodian/assignedCustodian/representedCustodianOrganization")
	return parseOrganization(org, "Custodian")
}

func extractGuardian(doc *Document) PersonInfo {
	guardian := doc.Find("recordTarget/patientRole/patient/guardian")
	if guardian == nil {
		return PersonInfo{Role: RoleGuardian}
	}
	name := guardian.Find("guardianPerson/name")
	if name == nil {
		name = guardian.Find("guardianOrganization/name")
	}
	return buildPerson(RoleGuardian, name, guardian.Child("guardianOrganization"), guardian)
}

// extractParticipants classifies header participant elements into role-tagged
// contacts and derives the preferred primary-care organization from the first
// PCP participant.
func extractParticipants(doc *Document) ([]PersonInfo, OrganizationInfo) {
	contacts := []PersonInfo{}
	preferred := OrganizationInfo{Contact: ContactInfo{Addresses: []Address{}, Telecoms: []Telecom{}}}

	for _, part := range doc.Root.ChildAll("participant") {
		entity := part.Child("associatedEntity")
		if entity == nil {
			continue
		}

		role := classifyParticipant(part, entity)
		p := buildPerson(role,
			entity.Find("associatedPerson/name"),
			entity.Child("scopingOrganization"),
			entity)

		if role == RolePrimaryCare && !preferred.HasData() {
			org := parseOrganization(entity.Child("scopingOrganization"), "Cabinet Medicale")
			if !org.HasData() {
				// PCP declared without a scoping organization: surface the
				// person's own contact details as the practice record.
				org = OrganizationInfo{Name: p.FullName, Contact: p.Contact, Type: "Cabinet Medicale"}
			}
			preferred = org
		}
		if p.HasData() {
			contacts = append(contacts, p)
		}
	}
	return contacts, preferred
}

// classifyParticipant maps typeCode/functionCode/classCode/relationship-code
// combinations to a contact role.
func classifyParticipant(part, entity *Element) string {
	functionCode := part.Child("functionCode").Attr("code")
	typeCode := part.Attr("typeCode")
	classCode := entity.Attr("classCode")
	relationship := entity.Child("code")

	if strings.EqualFold(functionCode, "PCP") {
		return RolePrimaryCare
	}
	if strings.EqualFold(classCode, "ECON") {
		if relationship != nil && strings.EqualFold(relationship.Attr("code"), "FAMMEMB") {
			return RoleEmergencyFamily
		}
		return RoleEmergencyContact
	}
	if strings.EqualFold(classCode, "GUARD") {
		return RoleGuardian
	}
	if relationship != nil && relationship.Attr("displayName") != "" {
		return relationship.Attr("displayName")
	}
	if strings.EqualFold(typeCode, "IND") {
		return RoleOtherContact
	}
	return RoleOtherContact
}
