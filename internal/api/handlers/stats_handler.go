package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zuulgate/zuul/backend/internal/services"
)

// StatsHandler serves the aggregate views behind the dashboard charts.
type StatsHandler struct {
	stats *services.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// TopRules returns the rules with the most matched requests.
func (h *StatsHandler) TopRules(c *gin.Context) {
	buckets, err := h.stats.TopRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute top rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// TopCountries returns the countries with the most requests.
func (h *StatsHandler) TopCountries(c *gin.Context) {
	buckets, err := h.stats.TopCountries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute top countries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// Evolution returns per-country request series over a trailing window.
func (h *StatsHandler) Evolution(c *gin.Context) {
	unit := c.DefaultQuery("unit", "day")
	last := queryInt(c, "last", 7)
	if last < 1 {
		last = 7
	}

	series, err := h.stats.Evolution(unit, last)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTimeUnit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unit must be 'hour' or 'day'"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute evolution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": series})
}
