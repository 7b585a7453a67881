package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zuulgate/zuul/backend/internal/models"
	"github.com/zuulgate/zuul/backend/internal/services"
)

// IgnoredHandler exposes the suppression-list CRUD surface. Mutations
// trigger a snapshot reload like rule mutations do.
type IgnoredHandler struct {
	ignored *services.IgnoredService
	reload  func()
}

// NewIgnoredHandler creates a new handler. reload may be nil in tests.
func NewIgnoredHandler(ignored *services.IgnoredService, reload func()) *IgnoredHandler {
	return &IgnoredHandler{ignored: ignored, reload: reload}
}

func (h *IgnoredHandler) reloadSnapshot() {
	if h.reload != nil {
		h.reload()
	}
}

type ignoredInput struct {
	Weight      int     `json:"weight"`
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

func (in *ignoredInput) toModel() models.Ignored {
	return models.Ignored{
		Weight:      in.Weight,
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

// Create stores a new ignore entry.
func (h *IgnoredHandler) Create(c *gin.Context) {
	var input ignoredInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := input.toModel()
	if err := h.ignored.Create(&entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ignore entry"})
		return
	}

	h.reloadSnapshot()
	c.JSON(http.StatusCreated, entry)
}

// List returns a filtered, paginated listing of ignore entries.
func (h *IgnoredHandler) List(c *gin.Context) {
	params := services.ListIgnoredParams{
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

	entries, total, err := h.ignored.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ignore entries"})
		return
	}

	paged(c, entries, params.Page, params.Limit, total)
}

// Get retrieves a single ignore entry.
func (h *IgnoredHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entry, err := h.ignored.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrIgnoredNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ignore entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ignore entry"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Update replaces an existing ignore entry.
func (h *IgnoredHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input ignoredInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := input.toModel()
	entry.ID = id
	if err := h.ignored.Update(&entry); err != nil {
		if errors.Is(err, services.ErrIgnoredNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ignore entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ignore entry"})
		return
	}

	h.reloadSnapshot()
	c.JSON(http.StatusOK, entry)
}

// Delete removes an ignore entry.
func (h *IgnoredHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.ignored.Delete(id); err != nil {
		if errors.Is(err, services.ErrIgnoredNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ignore entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ignore entry"})
		return
	}

	h.reloadSnapshot()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
