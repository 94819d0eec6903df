package cda

import (
	"fmt"
	"strings"
)

// ClinicalCode is one coded clinical statement found inside a section entry.
// Identity is the (Code, System) pair; the same pair discovered by different
// scan strategies collapses to a single instance.
type ClinicalCode struct {
	Code            string `json:"code"`
	System          string `json:"system"`
	SystemName      string `json:"system_name"`
	SystemVersion   string `json:"system_version,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	OriginalTextRef string `json:"original_text_ref,omitempty"`
}

// CodeCollection is an ordered, deduplicated sequence of clinical codes.
// Insertion order follows document order.
type CodeCollection struct {
	codes []ClinicalCode
	seen  map[string]struct{}
}

func newCodeCollection() *CodeCollection {
	return &CodeCollection{seen: make(map[string]struct{})}
}

// Add appends a code unless its (code, system) identity is already present.
func (c *CodeCollection) Add(code ClinicalCode) {
	if code.Code == "" || code.System == "" {
		return
	}
	key := code.Code + "|" + code.System
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.codes = append(c.codes, code)
}

// Codes returns the collected codes in document order.
func (c *CodeCollection) Codes() []ClinicalCode {
	return c.codes
}

// HasCodes reports whether anything was collected.
func (c *CodeCollection) HasCodes() bool { return len(c.codes) > 0 }

// Len returns the number of distinct codes collected.
func (c *CodeCollection) Len() int { return len(c.codes) }

// Systems returns the distinct system names in first-seen order, used by the
// display layer for terminology badges.
func (c *CodeCollection) Systems() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, code := range c.codes {
		if _, dup := seen[code.SystemName]; dup {
			continue
		}
		seen[code.SystemName] = struct{}{}
		out = append(out, code.SystemName)
	}
	return out
}

// ClinicalSection is one narrative block of the document body together with
// the codes found in its structured entries. Sections are built once per
// parse and not mutated afterwards.
type ClinicalSection struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Code              string         `json:"section_code,omitempty"`
	CodeSystem        string         `json:"section_system,omitempty"`
	Narrative         string         `json:"original_narrative"`
	Codes             []ClinicalCode `json:"codes"`
	TemplateIDs       []string       `json:"template_ids,omitempty"`
	MedicalTermsCount int            `json:"medical_terms_count"`
}

// HasCodes reports whether the section carries any coded entries.
func (s ClinicalSection) HasCodes() bool { return len(s.Codes) > 0 }

// knownCodePaths lists structural locations that carry codes across observed
// country variants. The flat attribute scan misses codes nested unusually
// deep in some national documents; these paths catch them, and let value,
// status and unit codes be resolved separately rather than conflated.
var knownCodePaths = []string{
	"observation/code",
	"observation/value",
	"observation/statusCode",
	"act/code",
	"act/statusCode",
	"procedure/code",
	"substanceAdministration/code",
	"substanceAdministration/routeCode",
	"supply/code",
	"encounter/code",
	"organizer/code",
	"observation/participant/participantRole/playingEntity/code",
	"act/participant/participantRole/playingEntity/code",
}

// clinicalStatements are the CDA entry children that anchor entryRelationship
// and component sub-scans.
var clinicalStatements = []string{
	"observation", "act", "procedure", "substanceAdministration",
	"supply", "encounter", "organizer",
}

// ExtractSections segments the document body into narrative sections and
// scans each section's entries for codes. A section without narrative text
// carries nothing displayable and is dropped. A failure inside one section is
// reported but never blocks extraction of the others.
func ExtractSections(doc *Document) ([]ClinicalSection, []error) {
	body := doc.Find("component/structuredBody")
	if body == nil {
		// Some documents wrap the body in an extra component layer.
		for _, comp := range doc.Root.Descendants("structuredBody") {
			body = comp
			break
		}
	}
	if body == nil {
		return nil, nil
	}

	var sections []ClinicalSection
	var errs []error
	for i, sec := range body.Descendants("section") {
		section, err := extractSection(sec, i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if section != nil {
			sections = append(sections, *section)
		}
	}
	return sections, errs
}

// extractSection builds one ClinicalSection, returning nil for sections that
// fail the narrative policy. Entry scanning runs under a recover guard so a
// malformed subtree skips only its own section.
func extractSection(sec *Element, index int) (section *ClinicalSection, err error) {
	id := sec.Attr("ID")
	if id == "" {
		if idEl := sec.Child("id"); idEl != nil {
			id = idEl.Attr("root")
		}
	}
	if id == "" {
		id = fmt.Sprintf("section-%d", index+1)
	}

	defer func() {
		if r := recover(); r != nil {
			section = nil
			err = &SectionError{SectionID: id, Err: fmt.Errorf("%v", r)}
		}
	}()

	narrative := sec.Child("text").FlatText()
	if narrative == "" {
		return nil, nil
	}

	s := &ClinicalSection{
		ID:        id,
		Title:     sec.Child("title").FlatText(),
		Narrative: narrative,
	}
	if code := sec.Child("code"); code != nil {
		s.Code = code.Attr("code")
		s.CodeSystem = code.Attr("codeSystem")
	}
	for _, tpl := range sec.ChildAll("templateId") {
		if root := tpl.Attr("root"); root != "" {
			s.TemplateIDs = append(s.TemplateIDs, root)
		}
	}

	codes := newCodeCollection()
	for _, entry := range sec.ChildAll("entry") {
		scanEntry(entry, codes)
	}
	s.Codes = codes.Codes()
	if s.Codes == nil {
		s.Codes = []ClinicalCode{}
	}
	s.MedicalTermsCount = codes.Len()
	return s, nil
}

// scanEntry runs the three complementary scan strategies over one structured
// entry and merges their findings into the collection. The collection itself
// enforces the dedup invariant; the attribute scan catches explicitly-coded
// elements anywhere, while the path scans also resolve codes whose system is
// only implied by position.
func scanEntry(entry *Element, codes *CodeCollection) {
	scanAttributes(entry, codes)
	scanKnownPaths(entry, codes)
	scanStructural(entry, codes)
}

// scanAttributes collects every element anywhere under the entry carrying
// both a code and codeSystem attribute.
func scanAttributes(entry *Element, codes *CodeCollection) {
	entry.Walk(func(el *Element) {
		if el.Attr("code") != "" && el.Attr("codeSystem") != "" {
			codes.Add(codeFromElement(el))
		}
	})
}

// scanKnownPaths collects codes from the fixed list of structural locations
// observed across country variants, including code and value elements under
// any entryRelationship target. Unlike the attribute scan it knows what kind
// of element it is looking at, so it can resolve codes whose system is implied
// by position: statusCode values belong to ActStatus and bare measurement
// units to UCUM, neither of which carries a codeSystem attribute.
func scanKnownPaths(entry *Element, codes *CodeCollection) {
	for _, path := range knownCodePaths {
		for _, el := range entry.FindAll(path) {
			codes.Add(codeFromPathElement(el))
		}
	}

	for _, rel := range entry.Descendants("entryRelationship") {
		for _, stmt := range clinicalStatements {
			for _, target := range rel.ChildAll(stmt) {
				for _, el := range target.ChildAll("code") {
					codes.Add(codeFromElement(el))
				}
				for _, el := range target.ChildAll("value") {
					codes.Add(codeFromPathElement(el))
				}
			}
		}
	}
}

// scanStructural explicitly walks entryRelationship, component and
// manufactured-product sub-trees. These are frequently present but their
// payloads (ingredient substances, strength, pharmaceutical form) hang off
// specific element names a flat scan does not follow.
func scanStructural(entry *Element, codes *CodeCollection) {
	for _, comp := range entry.Descendants("component") {
		for _, stmt := range clinicalStatements {
			for _, target := range comp.ChildAll(stmt) {
				for _, el := range target.ChildAll("code") {
					codes.Add(codeFromElement(el))
				}
				for _, el := range target.ChildAll("value") {
					codes.Add(codeFromPathElement(el))
				}
			}
		}
	}

	for _, product := range entry.Descendants("manufacturedProduct") {
		for _, material := range product.ChildAll("manufacturedMaterial") {
			if code := material.Child("code"); code != nil {
				codes.Add(codeFromElement(code))
			}
			if form := material.Child("formCode"); form != nil {
				codes.Add(codeFromElement(form))
			}
			for _, ingredient := range material.Descendants("ingredient") {
				for _, el := range ingredient.Descendants("code") {
					codes.Add(codeFromElement(el))
				}
			}
		}
	}
}

// codeFromPathElement builds a ClinicalCode from an element reached through a
// known path, inferring the terminology system when the element's position
// implies one and the document omits the codeSystem attribute.
func codeFromPathElement(el *Element) ClinicalCode {
	if el.Attr("codeSystem") != "" {
		return codeFromElement(el)
	}
	if el.Local == "statusCode" && el.Attr("code") != "" {
		return ClinicalCode{
			Code:       el.Attr("code"),
			System:     OIDActStatus,
			SystemName: SystemName(OIDActStatus),
		}
	}
	if unit := el.Attr("unit"); unit != "" {
		return ClinicalCode{
			Code:        unit,
			System:      OIDUCUM,
			SystemName:  SystemName(OIDUCUM),
			DisplayName: unit,
		}
	}
	return ClinicalCode{}
}

// codeFromElement builds a ClinicalCode from a coded element, resolving the
// system name via the registry when the document does not provide one and
// preserving the originalText back-reference for narrative cross-highlighting.
func codeFromElement(el *Element) ClinicalCode {
	code := ClinicalCode{
		Code:          el.Attr("code"),
		System:        el.Attr("codeSystem"),
		SystemVersion: el.Attr("codeSystemVersion"),
		DisplayName:   el.Attr("displayName"),
	}
	code.SystemName = el.Attr("codeSystemName")
	if code.SystemName == "" {
		code.SystemName = SystemName(code.System)
	}
	if ref := el.Find("originalText/reference"); ref != nil {
		code.OriginalTextRef = strings.TrimPrefix(ref.Attr("value"), "#")
	}
	return code
}
