package middleware

import "github.com/labstack/echo/v4"

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
}

// SecurityHeaders marks every response as non-embeddable. API responses
// carry patient data and are never cached; /metrics and /health may be.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			if path := c.Request().URL.Path; path != "/metrics" && path != "/health" {
				h.Set("Cache-Control", "no-store")
			}
			return next(c)
		}
	}
}
