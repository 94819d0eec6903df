package cda

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// DisplayResolver is the slice of the terminology client the handler needs to
// enrich codes with display names.
type DisplayResolver interface {
	Lookup(ctx context.Context, systemOID, code string) (string, error)
}

// Handler exposes the extraction engine over HTTP.
type Handler struct {
	extractor *Extractor
	resolver  DisplayResolver
	logger    zerolog.Logger
}

// NewHandler creates a CDA extraction handler. resolver may be nil when no
// terminology service is configured; display enrichment is then unavailable.
func NewHandler(extractor *Extractor, resolver DisplayResolver, logger zerolog.Logger) *Handler {
	return &Handler{extractor: extractor, resolver: resolver, logger: logger}
}

// RegisterRoutes registers the extraction endpoints on the provided group.
//
//	POST /cda/parse        - Full extraction of one CDA document
//	POST /cda/summary      - Counters and quality label only
//	GET  /codesystems      - Known terminology systems (badge legend)
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/cda/parse", h.Parse)
	g.POST("/cda/summary", h.Summary)
	g.GET("/codesystems", h.CodeSystems)
}

// parseSummary is the reduced response body for the summary endpoint.
type parseSummary struct {
	Success                 bool    `json:"success"`
	Title                   string  `json:"title,omitempty"`
	SectionsCount           int     `json:"sections_count"`
	CodedSectionsCount      int     `json:"coded_sections_count"`
	MedicalTermsCount       int     `json:"medical_terms_count"`
	CodedSectionsPercentage float64 `json:"coded_sections_percentage"`
	TranslationQuality      string  `json:"translation_quality"`
	ParsingCompleteness     float64 `json:"parsing_completeness"`
	DataRichnessScore       int     `json:"data_richness_score"`
}

// Parse handles POST /cda/parse. Partial results are returned with 200 and
// success=false; only an unparseable document yields an error status.
func (h *Handler) Parse(c echo.Context) error {
	result, httpErr := h.extract(c)
	if httpErr != nil {
		return httpErr
	}

	if c.QueryParam("resolve_display") == "true" && h.resolver != nil {
		h.enrichDisplayNames(c.Request().Context(), result)
	}
	return c.JSON(http.StatusOK, result)
}

// Summary handles POST /cda/summary.
func (h *Handler) Summary(c echo.Context) error {
	result, httpErr := h.extract(c)
	if httpErr != nil {
		return httpErr
	}
	return c.JSON(http.StatusOK, parseSummary{
		Success:                 result.Success,
		Title:                   result.Title,
		SectionsCount:           result.SectionsCount,
		CodedSectionsCount:      result.CodedSectionsCount,
		MedicalTermsCount:       result.MedicalTermsCount,
		CodedSectionsPercentage: result.CodedSectionsPercentage,
		TranslationQuality:      result.TranslationQuality,
		ParsingCompleteness:     result.ParsingCompleteness,
		DataRichnessScore:       result.DataRichnessScore,
	})
}

// CodeSystems handles GET /codesystems.
func (h *Handler) CodeSystems(c echo.Context) error {
	return c.JSON(http.StatusOK, KnownSystems())
}

// extract reads the request body and runs the engine, mapping failures onto
// HTTP statuses.
func (h *Handler) extract(c echo.Context) (*ParseResult, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request body is empty")
	}

	result, err := h.extractor.Extract(string(body))
	if err != nil {
		if errors.Is(err, ErrMalformedDocument) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		// Aggregation failures still carry partial data; surface it.
		var aggErr *AggregationError
		if errors.As(err, &aggErr) && aggErr.Result != nil {
			h.logger.Warn().Err(err).Msg("partial extraction")
			return aggErr.Result, nil
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !result.Success {
		h.logger.Warn().Str("error", result.Error).Msg("partial extraction")
	}
	return result, nil
}

// enrichDisplayNames fills in missing code display names via the terminology
// service. Lookup failures leave the code as extracted; enrichment never
// fails a parse.
func (h *Handler) enrichDisplayNames(ctx context.Context, result *ParseResult) {
	for si := range result.Sections {
		codes := result.Sections[si].Codes
		for ci := range codes {
			if codes[ci].DisplayName != "" {
				continue
			}
			display, err := h.resolver.Lookup(ctx, codes[ci].System, codes[ci].Code)
			if err != nil {
				continue
			}
			codes[ci].DisplayName = display
		}
	}
}
