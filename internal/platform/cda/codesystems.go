package cda

// Terminology system OIDs recognized by the extraction engine. The display
// layer only needs a short badge name per system; full code resolution is the
// job of the external terminology service.
const (
	OIDSNOMEDCT        = "2.16.840.1.113883.6.96"
	OIDLOINC           = "2.16.840.1.113883.6.1"
	OIDATC             = "2.16.840.1.113883.6.73"
	OIDICD10           = "2.16.840.1.113883.6.3"
	OIDICD10CM         = "2.16.840.1.113883.6.90"
	OIDICD9            = "2.16.840.1.113883.6.42"
	OIDRxNorm          = "2.16.840.1.113883.6.88"
	OIDUCUM            = "2.16.840.1.113883.6.8"
	OIDCVX             = "2.16.840.1.113883.12.292"
	OIDEDQM            = "0.4.0.127.0.16.1.1.2.1"
	OIDConfidentiality = "2.16.840.1.113883.5.25"
	OIDAdminGender     = "2.16.840.1.113883.5.1"
	OIDActCode         = "2.16.840.1.113883.5.4"
	OIDActStatus       = "2.16.840.1.113883.5.14"
	OIDRoleCode        = "2.16.840.1.113883.5.111"
	OIDParticipation   = "2.16.840.1.113883.5.90"
	OIDNullFlavor      = "2.16.840.1.113883.5.1008"
	OIDLanguage        = "2.16.840.1.113883.6.121"
	OIDMaritalStatus   = "2.16.840.1.113883.5.2"
)

// UnknownSystem is the degraded name returned for OIDs the registry does not
// know. Extraction never fails on an unrecognized system.
const UnknownSystem = "Unknown System"

// codeSystems maps terminology OIDs to short human-readable names. It is
// built once at init and never mutated afterwards, so concurrent parses can
// read it without synchronization.
var codeSystems = map[string]string{
	OIDSNOMEDCT:        "SNOMED CT",
	OIDLOINC:           "LOINC",
	OIDATC:             "ATC",
	OIDICD10:           "ICD-10",
	OIDICD10CM:         "ICD-10-CM",
	OIDICD9:            "ICD-9",
	OIDRxNorm:          "RxNorm",
	OIDUCUM:            "UCUM",
	OIDCVX:             "CVX",
	OIDEDQM:            "EDQM",
	OIDConfidentiality: "Confidentiality",
	OIDAdminGender:     "AdministrativeGender",
	OIDActCode:         "ActCode",
	OIDActStatus:       "ActStatus",
	OIDRoleCode:        "RoleCode",
	OIDParticipation:   "ParticipationType",
	OIDNullFlavor:      "NullFlavor",
	OIDLanguage:        "Language",
	OIDMaritalStatus:   "MaritalStatus",

	// National systems observed across member-state documents.
	"2.16.840.1.113883.2.9.6.1.5":  "Italian National System",
	"2.16.840.1.113883.2.9.2.10":   "Italian Regional System",
	"1.3.6.1.4.1.12559.11.10.1.3":  "epSOS Code System",
	"2.16.17.710.780.1000.990.1":   "Portuguese National System",
	"1.3.182.1.4":                  "Austrian National System",
	"2.16.840.1.113883.3.129":      "Greek National System",
	"2.16.840.1.113883.2.24":       "Czech National System",
	"2.16.840.1.113883.2.19.10":    "Luxembourg National System",
}

// SystemName resolves a terminology OID to its short display name, degrading
// to UnknownSystem rather than failing for OIDs outside the registry.
func SystemName(oid string) string {
	if name, ok := codeSystems[oid]; ok {
		return name
	}
	return UnknownSystem
}

// KnownSystems returns a copy of the registry for callers that render badge
// legends. The copy keeps the underlying map read-only.
func KnownSystems() map[string]string {
	out := make(map[string]string, len(codeSystems))
	for oid, name := range codeSystems {
		out[oid] = name
	}
	return out
}
