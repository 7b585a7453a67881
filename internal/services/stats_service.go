package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/models"
)

// Bucket is one slice of a top-N breakdown. Everything past the top ten
// collapses into a single "other" bucket.
type Bucket struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TimeSeriesPoint is one sample of a per-country request series.
type TimeSeriesPoint struct {
	X string `json:"x"`
	Y int64  `json:"y"`
}

// TimeSeries is the full series for one country code (or "other").
type TimeSeries struct {
	ID   string            `json:"id"`
	Data []TimeSeriesPoint `json:"data"`
}

const topBuckets = 10

// StatsService computes the aggregate views the dashboard charts consume.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type labelCount struct {
	Label string
	Count int64
}

// TopRules returns the ten rules with the most matched requests plus an
// "other" bucket, with each bucket's share of all records.
func (s *StatsService) TopRules() ([]Bucket, error) {
	var rows []labelCount
	err := s.db.Model(&models.Record{}).
		Select("CAST(rule_id AS TEXT) AS label, COUNT(*) AS count").
		Where("rule_id IS NOT NULL").
		Group("rule_id").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.Model(&models.Record{}).Count(&total).Error; err != nil {
		return nil, err
	}
	return foldBuckets(rows, total), nil
}

// TopCountries returns the ten countries with the most requests plus an
// "other" bucket. Records without geo data count under "unknown".
func (s *StatsService) TopCountries() ([]Bucket, error) {
	var rows []labelCount
	err := s.db.Model(&models.Record{}).
		Select("COALESCE(country_name, 'unknown') AS label, COUNT(*) AS count").
		Group("label").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.Model(&models.Record{}).Count(&total).Error; err != nil {
		return nil, err
	}
	return foldBuckets(rows, total), nil
}

// foldBuckets keeps the first topBuckets rows and sums the rest into an
// "other" bucket, attaching percentages of the overall total.
func foldBuckets(rows []labelCount, total int64) []Bucket {
	buckets := make([]Bucket, 0, topBuckets+1)
	var other int64
	for i, row := range rows {
		if i < topBuckets {
			buckets = append(buckets, Bucket{Label: row.Label, Count: row.Count})
			continue
		}
		other += row.Count
	}
	if other > 0 {
		buckets = append(buckets, Bucket{Label: "other", Count: other})
	}
	if total > 0 {
		for i := range buckets {
			pct := float64(buckets[i].Count) * 100.0 / float64(total)
			buckets[i].Percentage = math.Round(pct*10) / 10
		}
	}
	return buckets
}

// Evolution returns per-country request counts bucketed by hour or day over
// the trailing window of `last` units. Countries past the top ten collapse
// into an "other" series.
func (s *StatsService) Evolution(unit string, last int) ([]TimeSeries, error) {
	var bucketExpr string
	var window time.Duration
	switch unit {
	case "hour":
		bucketExpr = "strftime('%Y-%m-%dT%H:00:00Z', created_at)"
		window = time.Duration(last) * time.Hour
	case "day":
		bucketExpr = "strftime('%Y-%m-%dT00:00:00Z', created_at)"
		window = time.Duration(last) * 24 * time.Hour
	default:
		return nil, ErrInvalidTimeUnit
	}
	cutoff := time.Now().UTC().Add(-window)

	type seriesRow struct {
		Code   string
		Bucket string
		Count  int64
	}
	var rows []seriesRow
	err := s.db.Model(&models.Record{}).
		Select(fmt.Sprintf("country_code AS code, %s AS bucket, COUNT(*) AS count", bucketExpr)).
		Where("created_at >= ? AND country_code IS NOT NULL", cutoff).
		Group("code, bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Rank countries by overall volume to decide the top ten.
	totals := make(map[string]int64)
	for _, row := range rows {
		totals[row.Code] += row.Count
	}
	ranked := make([]string, 0, len(totals))
	for code := range totals {
		ranked = append(ranked, code)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if totals[ranked[i]] != totals[ranked[j]] {
			return totals[ranked[i]] > totals[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	top := make(map[string]bool, topBuckets)
	for i, code := range ranked {
		if i >= topBuckets {
			break
		}
		top[code] = true
	}

	// Fold the raw rows into per-series point maps.
	points := make(map[string]map[string]int64)
	for _, row := range rows {
		id := row.Code
		if !top[id] {
			id = "other"
		}
		if points[id] == nil {
			points[id] = make(map[string]int64)
		}
		points[id][row.Bucket] += row.Count
	}

	series := make([]TimeSeries, 0, len(points))
	for id, byBucket := range points {
		ts := TimeSeries{ID: id, Data: make([]TimeSeriesPoint, 0, len(byBucket))}
		for bucket, count := range byBucket {
			ts.Data = append(ts.Data, TimeSeriesPoint{X: bucket, Y: count})
		}
		sort.Slice(ts.Data, func(i, j int) bool { return ts.Data[i].X < ts.Data[j].X })
		series = append(series, ts)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].ID < series[j].ID })
	return series, nil
}
