package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zuulgate/zuul/backend/internal/services"
)

// RecordHandler exposes the audit-record read and retention surface.
type RecordHandler struct {
	records *services.RecordService
}

// NewRecordHandler creates a new handler.
func NewRecordHandler(records *services.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// List returns a filtered, paginated record listing.
func (h *RecordHandler) List(c *gin.Context) {
	params := services.ListRecordsParams{
		IPAddress:   c.Query("ip_address"),
		Protocol:    c.Query("protocol"),
		FQDN:        c.Query("fqdn"),
		Path:        c.Query("path"),
		Query:       c.Query("query"),
		CityName:    c.Query("city_name"),
		CountryName: c.Query("country_name"),
		CountryCode: c.Query("country_code"),
		Page:        queryInt(c, "page", services.DefaultPage),
		Limit:       queryInt(c, "limit", services.DefaultLimit),
		SortBy:      c.Query("sort_by"),
		Asc:         queryInt(c, "asc", 0) == 1,
	}

	records, total, err := h.records.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list records"})
		return
	}

	paged(c, records, params.Page, params.Limit, total)
}

// Get retrieves a single record.
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rec, err := h.records.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch record"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Info returns record counts for the dashboard.
func (h *RecordHandler) Info(c *gin.Context) {
	option := c.DefaultQuery("option", "total")
	count, err := h.records.Info(option)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInfoParam) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "option must be 'total' or 'filtered'"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read record info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"option": option, "count": count})
}

// DeleteBefore prunes records older than the given number of days.
func (h *RecordHandler) DeleteBefore(c *gin.Context) {
	days := queryInt(c, "days", 0)
	if days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days parameter is required"})
		return
	}

	deleted, err := h.records.DeleteBefore(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
