package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zuulgate/zuul/backend/internal/models"
	"github.com/zuulgate/zuul/backend/internal/services"
)

// RuleHandler exposes the rule CRUD surface. Every mutation triggers a
// snapshot reload so the decision pipeline picks the change up immediately.
type RuleHandler struct {
	rules  *services.RuleService
	reload func()
}

// NewRuleHandler creates a new handler. reload may be nil in tests.
func NewRuleHandler(rules *services.RuleService, reload func()) *RuleHandler {
	return &RuleHandler{rules: rules, reload: reload}
}

func (h *RuleHandler) reloadSnapshot() {
	if h.reload != nil {
		h.reload()
	}
}

type ruleInput struct {
	Weight      int     `json:"weight"`
	Allow       bool    `json:"allow"`
	Store       bool    `json:"store"`
	IPAddress   *string `json:"ip_address"`
	Protocol    *string `json:"protocol"`
	FQDN        *string `json:"fqdn"`
	Path        *string `json:"path"`
	Query       *string `json:"query"`
	CityName    *string `json:"city_name"`
	CountryName *string `json:"country_name"`
	CountryCode *string `json:"country_code"`
	Active      bool    `json:"active"`
}

func (in *ruleInput) toModel() models.Rule {
	return models.Rule{
		Weight:      in.Weight,
		Allow:       in.Allow,
		Store:       in.Store,
		IPAddress:   in.IPAddress,
		Protocol:    in.Protocol,
		FQDN:        in.FQDN,
		Path:        in.Path,
		Query:       in.Query,
		CityName:    in.CityName,
		CountryName: in.CountryName,
		CountryCode: in.CountryCode,
		Active:      in.Active,
	}
}

// Create stores a new rule.
func (h *RuleHandler) Create(c *gin.Context) {
	var input ruleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := input.toModel()
	if err := h.rules.Create(&rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}

	h.reloadSnapshot()
	c.JSON(http.StatusCreated, rule)
}

// List returns a filtered, paginated rule listing.
func (h *RuleHandler) List(c *gin.Context) {
	params := services.ListRulesParams{
		IPAddress:   c.Query("ip_address"),
		Protocol:    c.Query("protocol"),
		FQDN:        c.Query("fqdn"),
		Path:        c.Query("path"),
		Query:       c.Query("query"),
		CityName:    c.Query("city_name"),
		CountryName: c.Query("country_name"),
		CountryCode: c.Query("country_code"),
		Active:      queryBoolPtr(c, "active"),
		Page:        queryInt(c, "page", services.DefaultPage),
		Limit:       queryInt(c, "limit", services.DefaultLimit),
		SortBy:      c.Query("sort_by"),
		Asc:         queryInt(c, "asc", 1) == 1,
	}

	rules, total, err := h.rules.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rules"})
		return
	}

	paged(c, rules, params.Page, params.Limit, total)
}

// Get retrieves a single rule.
func (h *RuleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rule, err := h.rules.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rule"})
		return
	}

	c.JSON(http.StatusOK, rule)
}

// Update replaces an existing rule.
func (h *RuleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input ruleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := input.toModel()
	rule.ID = id
	if err := h.rules.Update(&rule); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule"})
		return
	}

	h.reloadSnapshot()
	c.JSON(http.StatusOK, rule)
}

// Delete removes a rule.
func (h *RuleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.rules.Delete(id); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}

	h.reloadSnapshot()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Info returns rule counts for the dashboard.
func (h *RuleHandler) Info(c *gin.Context) {
	option := c.DefaultQuery("option", "total")
	count, err := h.rules.Info(option)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInfoParam) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "option must be 'total' or 'active'"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read rule info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"option": option, "count": count})
}
