package models

import (
	"regexp"
	"time"
)

// Rule is a policy entry evaluated against incoming requests. Each pattern
// field holds a regular expression source; a nil or empty pattern leaves
// that field unconstrained. Rules are evaluated in ascending weight order
// and the first match wins.
type Rule struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Weight      int       `json:"weight" gorm:"index"`
	Allow       bool      `json:"allow"`
	Store       bool      `json:"store"`
	IPAddress   *string   `json:"ip_address"`
	Protocol    *string   `json:"protocol"`
	FQDN        *string   `json:"fqdn"`
	Path        *string   `json:"path"`
	Query       *string   `json:"query"`
	CityName    *string   `json:"city_name"`
	CountryName *string   `json:"country_name"`
	CountryCode *string   `json:"country_code"`
	Active      bool      `json:"active" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// patternSet holds the compiled per-field matchers shared by rules and
// ignore entries. A nil matcher imposes no constraint on its field.
type patternSet struct {
	ipAddress   *regexp.Regexp
	protocol    *regexp.Regexp
	fqdn        *regexp.Regexp
	path        *regexp.Regexp
	query       *regexp.Regexp
	cityName    *regexp.Regexp
	countryName *regexp.Regexp
	countryCode *regexp.Regexp
}

// compilePattern compiles a stored pattern source. Absent, empty, and
// invalid patterns all degrade to "no constraint" rather than rejecting
// the owning rule.
func compilePattern(src *string) *regexp.Regexp {
	if src == nil || *src == "" {
		return nil
	}
	re, err := regexp.Compile(*src)
	if err != nil {
		return nil
	}
	return re
}

// fieldMatches reports whether one field constraint passes. A missing
// matcher passes, and a missing request value also passes: a rule only
// constrains data that actually exists. Matching is an unanchored search.
func fieldMatches(re *regexp.Regexp, value *string) bool {
	if re == nil || value == nil {
		return true
	}
	return re.MatchString(*value)
}

// matches reports whether every field constraint passes for the record.
func (p *patternSet) matches(rec *Record) bool {
	return fieldMatches(p.ipAddress, rec.IPAddress) &&
		fieldMatches(p.protocol, rec.Protocol) &&
		fieldMatches(p.fqdn, rec.FQDN) &&
		fieldMatches(p.path, rec.Path) &&
		fieldMatches(p.query, rec.Query) &&
		fieldMatches(p.cityName, rec.CityName) &&
		fieldMatches(p.countryName, rec.CountryName) &&
		fieldMatches(p.countryCode, rec.CountryCode)
}

// CompiledRule is a Rule with its pattern fields compiled once so repeated
// matching never re-parses regex sources. Built by the rule set on load.
type CompiledRule struct {
	Rule     Rule
	patterns patternSet
}

// CompileRule compiles a rule's pattern fields for matching.
func CompileRule(rule Rule) CompiledRule {
	return CompiledRule{
		Rule: rule,
		patterns: patternSet{
			ipAddress:   compilePattern(rule.IPAddress),
			protocol:    compilePattern(rule.Protocol),
			fqdn:        compilePattern(rule.FQDN),
			path:        compilePattern(rule.Path),
			query:       compilePattern(rule.Query),
			cityName:    compilePattern(rule.CityName),
			countryName: compilePattern(rule.CountryName),
			countryCode: compilePattern(rule.CountryCode),
		},
	}
}

// Matches reports whether the record satisfies every constrained field.
func (cr *CompiledRule) Matches(rec *Record) bool {
	return cr.patterns.matches(rec)
}
