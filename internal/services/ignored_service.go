package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/models"
)

var ErrIgnoredNotFound = errors.New("ignore entry not found")

// IgnoredService owns the durable suppression list behind the admin API and
// feeds the in-memory suppression set.
type IgnoredService struct {
	db *gorm.DB
}

func NewIgnoredService(db *gorm.DB) *IgnoredService {
	return &IgnoredService{db: db}
}

// ActiveIgnored returns the active ignore entries ordered by ascending weight.
func (s *IgnoredService) ActiveIgnored() ([]models.Ignored, error) {
	var entries []models.Ignored
	if err := s.db.Where("active = ?", true).Order("weight ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Create stores a new ignore entry.
func (s *IgnoredService) Create(entry *models.Ignored) error {
	return s.db.Create(entry).Error
}

// GetByID retrieves an ignore entry by ID.
func (s *IgnoredService) GetByID(id uint) (*models.Ignored, error) {
	var entry models.Ignored
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIgnoredNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Update replaces every mutable field of an existing ignore entry.
func (s *IgnoredService) Update(entry *models.Ignored) error {
	existing, err := s.GetByID(entry.ID)
	if err != nil {
		return err
	}
	entry.CreatedAt = existing.CreatedAt
	return s.db.Save(entry).Error
}

// Delete removes an ignore entry.
func (s *IgnoredService) Delete(id uint) error {
	res := s.db.Delete(&models.Ignored{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrIgnoredNotFound
	}
	return nil
}

// ListIgnoredParams carries optional filters and pagination for ignore
// entry listings.
type ListIgnoredParams struct {
	IPAddress   string
	Protocol    string
	FQDN        string
	Path        string
	Query       string
	CityName    string
	CountryName string
	CountryCode string
	Active      *bool
	Page        int
	Limit       int
	SortBy      string
	Asc         bool
}

// List returns one page of ignore entries plus the total count.
func (s *IgnoredService) List(p ListIgnoredParams) ([]models.Ignored, int64, error) {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}

	q := s.db.Model(&models.Ignored{})
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
	if p.Active != nil {
		q = q.Where("active = ?", *p.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// A rejected sort column falls back whole: column and direction both
	// reset to the default ascending weight order.
	sortBy := p.SortBy
	direction := "ASC"
	if !ruleSortColumns[sortBy] {
		sortBy = "weight"
	} else if !p.Asc {
		direction = "DESC"
	}

	var entries []models.Ignored
	err := q.Order(fmt.Sprintf("%s %s", sortBy, direction)).
		Limit(p.Limit).
		Offset((p.Page - 1) * p.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
