package cda

import (
	"fmt"
	"strings"
)

// Translation quality labels derived from the coded-section percentage.
const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
	QualityBasic     = "Basic"
)

// ParseResult is the merged output of one document parse: clinical sections,
// administrative actors, patient identity, and the derived quality metrics
// the display layer uses to decide how to render partial data.
type ParseResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Title         string `json:"title,omitempty"`
	EffectiveTime string `json:"effective_time,omitempty"`
	DocumentID    string `json:"document_id,omitempty"`
	LanguageCode  string `json:"language_code,omitempty"`

	Patient        PatientDemographics `json:"patient_identity"`
	Administrative AdministrativeData  `json:"administrative_data"`
	Sections       []ClinicalSection   `json:"sections"`

	SectionsCount           int     `json:"sections_count"`
	CodedSectionsCount      int     `json:"coded_sections_count"`
	MedicalTermsCount       int     `json:"medical_terms_count"`
	CodedSectionsPercentage float64 `json:"coded_sections_percentage"`
	TranslationQuality      string  `json:"translation_quality"`

	ParsingCompleteness float64 `json:"parsing_completeness"`
	DataRichnessScore   int     `json:"data_richness_score"`
}

// Extractor runs the clinical and administrative extractions over one parsed
// tree and merges their outputs. It holds no state and is safe for concurrent
// use; independent documents never share anything but the read-only registry.
type Extractor struct{}

// NewExtractor creates an extraction engine.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the raw document text and produces a merged result. Only an
// unparseable document is a hard failure; any extraction failure below the
// root is recovered as close to its source as possible, and whichever half
// succeeded is always returned with Success=false and a joined error message.
func (e *Extractor) Extract(text string) (*ParseResult, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}
	return e.extract(doc)
}

// ExtractTree runs extraction over an already-parsed document.
func (e *Extractor) ExtractTree(doc *Document) *ParseResult {
	result, _ := e.extract(doc)
	return result
}

// extract owns the result value for the whole run, so a failure above the
// per-section and per-role guards still carries everything assembled before
// the panic on the aggregation error.
func (e *Extractor) extract(doc *Document) (result *ParseResult, err error) {
	result = &ParseResult{Sections: []ClinicalSection{}}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			aggErr := &AggregationError{
				Errs:   []error{fmt.Errorf("%v", r)},
				Result: result,
			}
			result.Error = aggErr.Error()
			err = aggErr
		}
	}()

	e.extractInto(doc, result)
	return result, nil
}

// extractInto fills the result from the parsed tree.
func (e *Extractor) extractInto(doc *Document, result *ParseResult) {
	var errs []error

	result.Title = doc.Root.Child("title").FlatText()
	if et := doc.Root.Child("effectiveTime"); et != nil {
		result.EffectiveTime = et.Attr("value")
	}
	if id := doc.Root.Child("id"); id != nil {
		result.DocumentID = id.Attr("root")
		if ext := id.Attr("extension"); ext != "" {
			result.DocumentID += "^" + ext
		}
	}
	if lang := doc.Root.Child("languageCode"); lang != nil {
		result.LanguageCode = lang.Attr("code")
	}

	// The two extractions are independent; neither reads the other's output.
	sections, sectionErrs := ExtractSections(doc)
	errs = append(errs, sectionErrs...)
	if sections != nil {
		result.Sections = sections
	}

	admin, adminErrs := ExtractAdministrative(doc)
	errs = append(errs, adminErrs...)
	result.Administrative = admin

	result.Patient = ExtractDemographics(doc)

	e.score(result)

	result.Success = len(errs) == 0
	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		result.Error = strings.Join(msgs, "; ")
	}
}

// score fills in the derived counters and quality metrics.
func (e *Extractor) score(result *ParseResult) {
	result.SectionsCount = len(result.Sections)
	for _, s := range result.Sections {
		if s.HasCodes() {
			result.CodedSectionsCount++
		}
		result.MedicalTermsCount += s.MedicalTermsCount
	}
	if result.SectionsCount > 0 {
		result.CodedSectionsPercentage = float64(result.CodedSectionsCount) / float64(result.SectionsCount) * 100
	}
	result.TranslationQuality = translationQuality(result.CodedSectionsPercentage)
	result.ParsingCompleteness = e.completeness(result)
	result.DataRichnessScore = e.richness(result)
}

// translationQuality buckets the coded-section percentage into the label the
// display layer shows next to the document.
func translationQuality(pct float64) string {
	switch {
	case pct >= 80:
		return QualityExcellent
	case pct >= 60:
		return QualityGood
	case pct >= 40:
		return QualityFair
	default:
		return QualityBasic
	}
}

// completeness is the fraction of the five extraction facets that produced
// data, as a percentage.
func (e *Extractor) completeness(result *ParseResult) float64 {
	checks := []bool{
		result.SectionsCount > 0,
		result.MedicalTermsCount > 0,
		result.Title != "" || result.DocumentID != "",
		result.Patient.FullName() != "" || len(result.Patient.Identifiers) > 0,
		e.providerCount(result) > 0,
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks)) * 100
}

// richness is a 0-100 weighted score of how much renderable data the parse
// produced. Counts are capped so one exhaustive facet cannot mask an
// otherwise empty document.
func (e *Extractor) richness(result *ParseResult) int {
	score := 0

	score += 10 * min(result.SectionsCount, 3) // up to 30
	score += min(result.MedicalTermsCount, 20) // up to 20
	if result.Title != "" {
		score += 10
	}
	if result.Patient.FullName() != "" {
		score += 10
	}
	score += 5 * min(e.providerCount(result), 2) // up to 10
	if result.Administrative.Custodian.Name != "" {
		score += 10
	}
	if result.Administrative.LegalAuthenticator.FullName != "" {
		score += 10
	}
	return score
}

// providerCount counts the healthcare professionals the parse surfaced.
func (e *Extractor) providerCount(result *ParseResult) int {
	count := 0
	if result.Administrative.Author.HasData() {
		count++
	}
	if result.Administrative.LegalAuthenticator.HasData() {
		count++
	}
	count += len(result.Administrative.OtherContacts)
	return count
}
