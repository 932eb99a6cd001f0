package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
)

// DefaultBodyLimit applies when BODY_LIMIT is empty.
const DefaultBodyLimit = "256K"

// ParseLimit converts a size such as "256K", "1MB" or "2048" into bytes.
// Units are decimal: "256K" is 256000 bytes, matching echo's body limit.
func ParseLimit(s string) (int64, error) {
	if s == "" {
		s = DefaultBodyLimit
	}
	return bytes.Parse(s)
}

// BodyLimit answers 413 to request bodies larger than limit. Oversized
// bodies without a Content-Length fail while the handler reads them. An
// unparseable limit falls back to DefaultBodyLimit; config validation
// rejects it before the server starts.
func BodyLimit(limit string) echo.MiddlewareFunc {
	if _, err := ParseLimit(limit); err != nil || limit == "" {
		limit = DefaultBodyLimit
	}
	return echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{
		Skipper: func(c echo.Context) bool { return c.IsWebSocket() },
		Limit:   limit,
	})
}
