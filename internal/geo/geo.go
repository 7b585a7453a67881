package geo

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/oschwald/maxminddb-golang"

	"github.com/zuulgate/zuul/backend/internal/logger"
)

// Location holds the optional geo attributes resolved for a client IP.
// A nil field means the attribute is unknown.
type Location struct {
	CityName    *string
	CountryName *string
	CountryCode *string
}

// Resolver resolves a client IP into geo attributes. Implementations must
// never fail the caller: an unparsable IP, a lookup miss, or a database
// error all resolve to an empty Location.
type Resolver interface {
	Complete(ip string) Location
}

// cityRecord maps the subset of a GeoLite2-City entry the gateway uses.
type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// MaxMindResolver resolves IPs against a local MaxMind City database. The
// reader is held behind an atomic pointer so the database file can be
// swapped at runtime without blocking lookups.
type MaxMindResolver struct {
	path string
	db   atomic.Pointer[maxminddb.Reader]
}

// Open loads the MaxMind database at path.
func Open(path string) (*MaxMindResolver, error) {
	r := &MaxMindResolver{path: path}
	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("open geo database: %w", err)
	}
	return r, nil
}

// Reload reopens the database file and swaps it in atomically.
func (r *MaxMindResolver) Reload() error {
	db, err := maxminddb.Open(r.path)
	if err != nil {
		return err
	}
	if old := r.db.Swap(db); old != nil {
		_ = old.Close()
	}
	return nil
}

// Close releases the underlying database reader.
func (r *MaxMindResolver) Close() error {
	if db := r.db.Swap(nil); db != nil {
		return db.Close()
	}
	return nil
}

// Complete resolves city and country attributes for the given IP. English
// names are used. Every failure mode degrades to an empty Location.
func (r *MaxMindResolver) Complete(ip string) Location {
	db := r.db.Load()
	if db == nil || ip == "" {
		return Location{}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).Debug("geo lookup skipped: unparsable ip")
		return Location{}
	}

	var rec cityRecord
	if err := db.Lookup(parsed, &rec); err != nil {
		logger.WithError(err).WithField("ip", ip).Debug("geo lookup failed")
		return Location{}
	}

	return Location{
		CityName:    optionalName(rec.City.Names["en"]),
		CountryName: optionalName(rec.Country.Names["en"]),
		CountryCode: optionalName(rec.Country.ISOCode),
	}
}

// NoopResolver resolves every IP to an empty Location. Used when no geo
// database is configured.
type NoopResolver struct{}

// Complete always returns an empty Location.
func (NoopResolver) Complete(string) Location { return Location{} }

func optionalName(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
