package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/models"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidInfoParam = errors.New("unknown info option")
	ErrInvalidTimeUnit  = errors.New("unit must be 'hour' or 'day'")
)

// recordSortColumns whitelists the columns a caller may sort records by.
var recordSortColumns = map[string]bool{
	"created_at": true, "ip_address": true, "protocol": true, "fqdn": true,
	"path": true, "query": true, "city_name": true, "country_name": true,
	"country_code": true,
}

// RecordService persists and queries audit records. It is the durable side
// of the write-behind cache.
type RecordService struct {
	db *gorm.DB
}

func NewRecordService(db *gorm.DB) *RecordService {
	return &RecordService{db: db}
}

// InsertOne writes a single audit record.
func (s *RecordService) InsertOne(rec *models.Record) error {
	return s.db.Create(rec).Error
}

// InsertBulk writes a batch of audit records as one multi-row insert.
// The batch is all-or-nothing.
func (s *RecordService) InsertBulk(recs []*models.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return s.db.Create(&recs).Error
}

// ListRecordsParams carries the optional filters, pagination, and sorting
// for record listings. Filter values match as substrings.
type ListRecordsParams struct {
	IPAddress   string
	Protocol    string
	FQDN        string
	Path        string
	Query       string
	CityName    string
	CountryName string
	CountryCode string
	Page        int
	Limit       int
	SortBy      string
	Asc         bool
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

func (p *ListRecordsParams) normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
}

func (s *RecordService) filtered(p *ListRecordsParams) *gorm.DB {
	q := s.db.Model(&models.Record{})
	filters := []struct {
		column string
		value  string
	}{
		{"ip_address", p.IPAddress},
		{"protocol", p.Protocol},
		{"fqdn", p.FQDN},
		{"path", p.Path},
		{"query", p.Query},
		{"city_name", p.CityName},
		{"country_name", p.CountryName},
		{"country_code", p.CountryCode},
	}
	for _, f := range filters {
		if f.value != "" {
			q = q.Where(f.column+" LIKE ?", "%"+f.value+"%")
		}
	}
	return q
}

// List returns one page of records plus the total count for the filters.
func (s *RecordService) List(p ListRecordsParams) ([]models.Record, int64, error) {
	p.normalize()

	q := s.filtered(&p)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := p.SortBy
	if !recordSortColumns[sortBy] {
		sortBy = "created_at"
	}
	direction := "DESC"
	if p.Asc {
		direction = "ASC"
	}

	var records []models.Record
	err := q.Order(fmt.Sprintf("%s %s", sortBy, direction)).
		Limit(p.Limit).
		Offset((p.Page - 1) * p.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetByID retrieves a single record.
func (s *RecordService) GetByID(id uint) (*models.Record, error) {
	var rec models.Record
	if err := s.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Info returns aggregate counts: "total" counts all records, "filtered"
// counts those that matched a rule.
func (s *RecordService) Info(option string) (int64, error) {
	q := s.db.Model(&models.Record{})
	switch option {
	case "total":
	case "filtered":
		q = q.Where("rule_id IS NOT NULL")
	default:
		return 0, ErrInvalidInfoParam
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteBefore removes records older than the given number of days and
// returns how many were deleted.
func (s *RecordService) DeleteBefore(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res := s.db.Where("created_at < ?", cutoff).Delete(&models.Record{})
	return res.RowsAffected, res.Error
}
