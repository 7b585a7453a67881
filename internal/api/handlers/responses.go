package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// paged writes a listing response with its pagination block.
func paged(c *gin.Context, data interface{}, page, limit int, total int64) {
	pages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"pagination": gin.H{
			"page":    page,
			"limit":   limit,
			"pages":   pages,
			"records": total,
		},
	})
}

// queryInt reads an integer query parameter, falling back when absent or
// malformed.
func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

// queryBoolPtr reads an optional boolean query parameter; nil means unset.
func queryBoolPtr(c *gin.Context, key string) *bool {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return &v
		}
	}
	return nil
}

// pathID parses the numeric :id path parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
