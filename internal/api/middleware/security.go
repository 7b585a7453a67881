package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the standard hardening headers on every response.
// Development mode relaxes the policy for local dashboards: no HSTS, and
// inline/eval scripts allowed for hot reloading.
func SecurityHeaders(isDevelopment bool) gin.HandlerFunc {
	csp := buildCSP(isDevelopment)
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", csp)
		if !isDevelopment {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Cross-Origin-Resource-Policy", "same-origin")
		c.Next()
	}
}

func buildCSP(isDevelopment bool) string {
	directives := []string{
		"default-src 'self'",
		"img-src 'self' data:",
		"style-src 'self' 'unsafe-inline'",
		"frame-src 'none'",
		"object-src 'none'",
		"base-uri 'self'",
	}
	if isDevelopment {
		directives = append(directives,
			"script-src 'self' 'unsafe-inline' 'unsafe-eval'",
			"connect-src 'self' ws: wss:",
		)
	} else {
		directives = append(directives, "script-src 'self'", "connect-src 'self'")
	}
	return strings.Join(directives, "; ")
}
