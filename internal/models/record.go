package models

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zuulgate/zuul/backend/internal/geo"
)

// Record is one audited proxy request: the normalized forwarded-header
// fields plus the geo attributes resolved for the client IP. A nil field
// means the proxy did not supply that value.
type Record struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	IPAddress   *string   `json:"ip_address" gorm:"index"`
	Protocol    *string   `json:"protocol"`
	FQDN        *string   `json:"fqdn" gorm:"index"`
	Path        *string   `json:"path"`
	Query       *string   `json:"query"`
	CityName    *string   `json:"city_name"`
	CountryName *string   `json:"country_name"`
	CountryCode *string   `json:"country_code" gorm:"index"`
	RuleID      *uint     `json:"rule_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// NewRecordFromHeaders builds a Record from the proxy-forwarded header set
// and enriches it through the geo resolver. Malformed headers never fail the
// build: a value that is missing or unparsable simply stays nil.
func NewRecordFromHeaders(h http.Header, resolver geo.Resolver) *Record {
	ip := clientIP(h.Get("X-Forwarded-For"))
	proto := h.Get("X-Forwarded-Proto")
	host := h.Get("X-Forwarded-Host")

	u, err := url.Parse(h.Get("X-Forwarded-Uri"))
	if err != nil {
		u = &url.URL{}
	}

	loc := resolver.Complete(ip)

	return &Record{
		IPAddress:   optional(ip),
		Protocol:    optional(proto),
		FQDN:        optional(host),
		Path:        optional(u.Path),
		Query:       optional(u.RawQuery),
		CityName:    loc.CityName,
		CountryName: loc.CountryName,
		CountryCode: loc.CountryCode,
		CreatedAt:   time.Now().UTC(),
	}
}

// clientIP extracts the client address from an X-Forwarded-For value, which
// may carry a comma-separated proxy chain. The leftmost entry is the client.
func clientIP(forwardedFor string) string {
	if forwardedFor == "" {
		return ""
	}
	if i := strings.Index(forwardedFor, ","); i != -1 {
		forwardedFor = forwardedFor[:i]
	}
	return strings.TrimSpace(forwardedFor)
}

// optional maps empty strings to nil so "header absent" and "header empty"
// collapse into the same unset state.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
