package cda

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument reports input that is not well-formed XML. It is the
// only failure with no partial result: nothing can be extracted from text
// that does not parse.
var ErrMalformedDocument = errors.New("cda: malformed document")

// SectionError reports a failure while scanning one section's entries. The
// aggregator skips the affected section and keeps the rest of the document.
type SectionError struct {
	SectionID string
	Err       error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("cda: section %s extraction failed: %v", e.SectionID, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// RoleError reports a failure in one administrative role sub-extractor. The
// affected role keeps its empty default record; other roles are unaffected.
type RoleError struct {
	Role string
	Err  error
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("cda: %s extraction failed: %v", e.Role, e.Err)
}

func (e *RoleError) Unwrap() error { return e.Err }

// AggregationError wraps failures surfaced at the top of a parse. The partial
// result that was assembled before the failure is always carried alongside it.
type AggregationError struct {
	Errs   []error
	Result *ParseResult
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("cda: aggregation completed with errors: %v", errors.Join(e.Errs...))
}

func (e *AggregationError) Unwrap() error { return errors.Join(e.Errs...) }
