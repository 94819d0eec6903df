package cda

import (
	"errors"
	"testing"
)

func TestExtract_SingleCodedSection(t *testing.T) {
	result, err := NewExtractor().Extract(allergyDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, got error %q", result.Error)
	}
	if result.SectionsCount != 1 {
		t.Errorf("expected 1 section, got %d", result.SectionsCount)
	}
	if result.CodedSectionsCount != 1 {
		t.Errorf("expected 1 coded section, got %d", result.CodedSectionsCount)
	}
	if result.MedicalTermsCount != 1 {
		t.Errorf("expected 1 medical term, got %d", result.MedicalTermsCount)
	}
	if result.TranslationQuality != QualityExcellent {
		t.Errorf("expected Excellent quality, got %q", result.TranslationQuality)
	}

	sec := result.Sections[0]
	if sec.Narrative != "Allergic disposition" {
		t.Errorf("unexpected narrative %q", sec.Narrative)
	}
	if sec.Codes[0].Code != "609328004" || sec.Codes[0].System != OIDSNOMEDCT {
		t.Errorf("unexpected code %+v", sec.Codes[0])
	}
	if sec.Codes[0].SystemName != "SNOMED CT" {
		t.Errorf("expected resolved SNOMED CT name, got %q", sec.Codes[0].SystemName)
	}
}

func TestExtract_DocumentMetadata(t *testing.T) {
	result, err := NewExtractor().Extract(allergyDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "Patient Summary" {
		t.Errorf("unexpected title %q", result.Title)
	}
	if result.EffectiveTime != "20240115103000" {
		t.Errorf("unexpected effective time %q", result.EffectiveTime)
	}
	if result.DocumentID != "2.16.840.1.113883.2.9.2.120^DOC-0001" {
		t.Errorf("unexpected document id %q", result.DocumentID)
	}
	if result.LanguageCode != "it-IT" {
		t.Errorf("unexpected language %q", result.LanguageCode)
	}
}

func TestExtract_Malformed(t *testing.T) {
	result, err := NewExtractor().Extract("<not-a-document")
	if err == nil {
		t.Fatal("expected error for malformed document")
	}
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
	if result != nil {
		t.Error("no partial result exists for unparseable text")
	}
}

func TestExtract_CompletenessAndRichness(t *testing.T) {
	result, err := NewExtractor().Extract(fullDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// All five completeness facets produce data in the full fixture.
	if result.ParsingCompleteness != 100 {
		t.Errorf("expected 100%% completeness, got %v", result.ParsingCompleteness)
	}

	// 3 sections (30) + 10 terms (10) + title (10) + patient name (10) +
	// capped providers (10) + custodian (10) + legal authenticator (10).
	if result.DataRichnessScore != 90 {
		t.Errorf("expected richness 90, got %d", result.DataRichnessScore)
	}
	if result.CodedSectionsPercentage != 100 {
		t.Errorf("expected 100%% coded sections, got %v", result.CodedSectionsPercentage)
	}
}

func TestExtract_MinimalDocumentPartialMetrics(t *testing.T) {
	result, err := NewExtractor().Extract(minimalDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Errorf("a sparse document is not a failure: %q", result.Error)
	}
	if result.SectionsCount != 0 {
		t.Errorf("expected 0 sections, got %d", result.SectionsCount)
	}
	if result.TranslationQuality != QualityBasic {
		t.Errorf("expected Basic quality, got %q", result.TranslationQuality)
	}
	// Facets present: document title, patient identifier. Absent: sections,
	// codes, providers.
	if result.ParsingCompleteness != 40 {
		t.Errorf("expected 40%% completeness, got %v", result.ParsingCompleteness)
	}
}

func TestExtract_UnexpectedFailureKeepsPartialResult(t *testing.T) {
	doc := mustParse(t, allergyDocument)

	// A nil child inside the patient role blows up the unguarded demographics
	// pass, after sections and administrative data were already assembled.
	role := doc.Find("recordTarget/patientRole")
	role.Children = append(role.Children, nil)

	result, err := NewExtractor().extract(doc)
	if err == nil {
		t.Fatal("expected an aggregation error")
	}

	var aggErr *AggregationError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregationError, got %T: %v", err, err)
	}
	if aggErr.Result == nil {
		t.Fatal("aggregation error must carry the partial result")
	}
	if aggErr.Result != result {
		t.Error("returned result and carried result diverge")
	}
	if result.Success {
		t.Error("partial result reports success")
	}
	if result.Error == "" {
		t.Error("partial result carries no error message")
	}

	// Everything assembled before the failure survives.
	if len(result.Sections) != 1 {
		t.Errorf("clinical half lost: %d sections", len(result.Sections))
	}
	if result.Administrative.Author.FullName != "Anna Bianchi" {
		t.Errorf("administrative half lost: author %q", result.Administrative.Author.FullName)
	}
	if result.Title != "Patient Summary" {
		t.Errorf("document metadata lost: title %q", result.Title)
	}

	// ExtractTree surfaces the same partial rather than nil.
	if tree := NewExtractor().ExtractTree(doc); tree == nil || len(tree.Sections) != 1 {
		t.Error("tree extraction dropped the partial result")
	}
}

func TestTranslationQuality_Thresholds(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{100, QualityExcellent},
		{80, QualityExcellent},
		{79.9, QualityGood},
		{60, QualityGood},
		{59.9, QualityFair},
		{40, QualityFair},
		{39.9, QualityBasic},
		{0, QualityBasic},
	}
	for _, tc := range cases {
		if got := translationQuality(tc.pct); got != tc.want {
			t.Errorf("translationQuality(%v) = %q, want %q", tc.pct, got, tc.want)
		}
	}
}

func TestExtract_IndependentHalvesMerged(t *testing.T) {
	result, err := NewExtractor().Extract(fullDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both extractions contribute to the one result.
	if len(result.Sections) == 0 {
		t.Error("clinical half missing")
	}
	if !result.Administrative.Author.HasData() {
		t.Error("administrative half missing")
	}
	if result.Patient.FullName() == "" {
		t.Error("demographics missing")
	}
}
