// Package terminology is the client for the external terminology service.
// The extraction engine never resolves code display names itself; the HTTP
// boundary optionally enriches unresolved codes through this package.
package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Resolver looks up the display name for a code within a terminology system
// identified by OID.
type Resolver interface {
	Lookup(ctx context.Context, systemOID, code string) (string, error)
}

// lookupResponse is the FHIR Parameters resource returned by CodeSystem/$lookup.
type lookupResponse struct {
	ResourceType string `json:"resourceType"`
	Parameter    []struct {
		Name        string `json:"name"`
		ValueString string `json:"valueString,omitempty"`
	} `json:"parameter"`
}

// HTTPResolver resolves codes against a FHIR terminology server's
// CodeSystem/$lookup operation.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPResolver creates a resolver for the given terminology base URL.
func NewHTTPResolver(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Lookup performs CodeSystem/$lookup and returns the display parameter.
func (r *HTTPResolver) Lookup(ctx context.Context, systemOID, code string) (string, error) {
	if systemOID == "" || code == "" {
		return "", fmt.Errorf("terminology: system and code are required")
	}

	q := url.Values{}
	q.Set("system", "urn:oid:"+systemOID)
	q.Set("code", code)
	endpoint := r.baseURL + "/CodeSystem/$lookup?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("terminology: build request: %w", err)
	}
	req.Header.Set("Accept", "application/fhir+json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("terminology: lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("terminology: lookup returned status %d", resp.StatusCode)
	}

	var parsed lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("terminology: decode response: %w", err)
	}
	for _, p := range parsed.Parameter {
		if p.Name == "display" && p.ValueString != "" {
			return p.ValueString, nil
		}
	}

	r.logger.Debug().Str("system", systemOID).Str("code", code).Msg("no display returned by terminology service")
	return "", fmt.Errorf("terminology: no display for %s in %s", code, systemOID)
}

// StaticResolver serves lookups from a fixed in-memory table. Used in tests
// and in deployments without a terminology service.
type StaticResolver struct {
	displays map[string]string
}

// NewStaticResolver creates a resolver over a map keyed "system|code".
func NewStaticResolver(displays map[string]string) *StaticResolver {
	copied := make(map[string]string, len(displays))
	for k, v := range displays {
		copied[k] = v
	}
	return &StaticResolver{displays: copied}
}

// Lookup returns the configured display, or an error when absent.
func (r *StaticResolver) Lookup(_ context.Context, systemOID, code string) (string, error) {
	if display, ok := r.displays[systemOID+"|"+code]; ok {
		return display, nil
	}
	return "", fmt.Errorf("terminology: no display for %s in %s", code, systemOID)
}
