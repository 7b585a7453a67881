package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/models"
)

var ErrRuleNotFound = errors.New("rule not found")

// ruleSortColumns whitelists the columns a caller may sort rules by.
var ruleSortColumns = map[string]bool{
	"weight": true, "created_at": true, "updated_at": true, "ip_address": true,
	"protocol": true, "fqdn": true, "path": true, "city_name": true,
	"country_name": true, "country_code": true,
}

// RuleService owns the durable rule store behind the admin API and feeds
// the in-memory rule set.
type RuleService struct {
	db *gorm.DB
}

func NewRuleService(db *gorm.DB) *RuleService {
	return &RuleService{db: db}
}

// ActiveRules returns the active rules ordered by ascending weight. This is
// the load point for the in-memory rule set; ties keep database order.
func (s *RuleService) ActiveRules() ([]models.Rule, error) {
	var rules []models.Rule
	if err := s.db.Where("active = ?", true).Order("weight ASC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Create stores a new rule.
func (s *RuleService) Create(rule *models.Rule) error {
	return s.db.Create(rule).Error
}

// GetByID retrieves a rule by ID.
func (s *RuleService) GetByID(id uint) (*models.Rule, error) {
	var rule models.Rule
	if err := s.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// Update replaces every mutable field of an existing rule.
func (s *RuleService) Update(rule *models.Rule) error {
	existing, err := s.GetByID(rule.ID)
	if err != nil {
		return err
	}
	rule.CreatedAt = existing.CreatedAt
	return s.db.Save(rule).Error
}

// Delete removes a rule.
func (s *RuleService) Delete(id uint) error {
	res := s.db.Delete(&models.Rule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// ListRulesParams carries optional filters, pagination, and sorting for
// rule listings.
type ListRulesParams struct {
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

// List returns one page of rules plus the total count for the filters.
func (s *RuleService) List(p ListRulesParams) ([]models.Rule, int64, error) {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}

	q := s.db.Model(&models.Rule{})
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

	var rules []models.Rule
	err := q.Order(fmt.Sprintf("%s %s", sortBy, direction)).
		Limit(p.Limit).
		Offset((p.Page - 1) * p.Limit).
		Find(&rules).Error
	if err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// Info returns aggregate counts: "total" counts all rules, "active" counts
// the rules participating in evaluation.
func (s *RuleService) Info(option string) (int64, error) {
	q := s.db.Model(&models.Rule{})
	switch option {
	case "total":
	case "active":
		q = q.Where("active = ?", true)
	default:
		return 0, ErrInvalidInfoParam
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
