package models

import (
	"time"
)

// Ignored is a suppression entry: a request that matches one is evaluated
// normally but its audit record is never persisted, regardless of the
// matching rule's store flag. It shares the rule pattern shape but carries
// no verdict of its own.
type Ignored struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Weight      int       `json:"weight" gorm:"index"`
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

// TableName keeps the table singular; "ignored" is already a collective.
func (Ignored) TableName() string { return "ignored" }

// CompiledIgnored is an Ignored entry with its patterns compiled once.
type CompiledIgnored struct {
	Ignored  Ignored
	patterns patternSet
}

// CompileIgnored compiles an ignore entry's pattern fields for matching.
func CompileIgnored(entry Ignored) CompiledIgnored {
	return CompiledIgnored{
		Ignored: entry,
		patterns: patternSet{
			ipAddress:   compilePattern(entry.IPAddress),
			protocol:    compilePattern(entry.Protocol),
			fqdn:        compilePattern(entry.FQDN),
			path:        compilePattern(entry.Path),
			query:       compilePattern(entry.Query),
			cityName:    compilePattern(entry.CityName),
			countryName: compilePattern(entry.CountryName),
			countryCode: compilePattern(entry.CountryCode),
		},
	}
}

// Matches reports whether the record satisfies every constrained field.
func (ci *CompiledIgnored) Matches(rec *Record) bool {
	return ci.patterns.matches(rec)
}
