package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// BodyLimit limits the request body size for document uploads. CDA patient
// summaries rarely exceed a few megabytes, but scanned attachments embedded
// as base64 can inflate them considerably.
//
// The limit is a human-readable string: "1M", "512K", "2G"; a bare number is
// bytes. Exceeding the limit yields HTTP 413.
func BodyLimit(limit string) echo.MiddlewareFunc {
	maxBytes := parseLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			// Content-Length allows early rejection, but the reader wrapper
			// below still enforces the limit when the header lies or is
			// missing.
			if req.ContentLength > maxBytes {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			}

			req.Body = &limitedReader{ReadCloser: req.Body, remaining: maxBytes}
			return next(c)
		}
	}
}

type limitedReader struct {
	io.ReadCloser
	remaining int64
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if r.remaining < 0 {
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds upload limit")
	}
	n, err := r.ReadCloser.Read(p)
	r.remaining -= int64(n)
	if r.remaining < 0 {
		return n, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds upload limit")
	}
	return n, err
}

// parseLimit converts "1M"-style limits to bytes, defaulting to 10 megabytes
// for unparseable input.
func parseLimit(limit string) int64 {
	const defaultLimit = 10 << 20

	s := strings.TrimSpace(strings.ToUpper(limit))
	if s == "" {
		return defaultLimit
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K':
		multiplier = 1 << 10
		s = s[:len(s)-1]
	case 'M':
		multiplier = 1 << 20
		s = s[:len(s)-1]
	case 'G':
		multiplier = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return n * multiplier
}
