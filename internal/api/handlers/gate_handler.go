package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zuulgate/zuul/backend/internal/engine"
)

// GateHandler serves the forward-auth callback the reverse proxy consults
// for every inbound request.
type GateHandler struct {
	pipeline *engine.Pipeline
}

// NewGateHandler creates a new handler.
func NewGateHandler(pipeline *engine.Pipeline) *GateHandler {
	return &GateHandler{pipeline: pipeline}
}

// Decide evaluates the forwarded request and answers with the bare verdict.
// The body is deliberately opaque so a probing client learns nothing about
// which rule fired.
func (h *GateHandler) Decide(c *gin.Context) {
	verdict := h.pipeline.Evaluate(c.Request.Header)
	if verdict.Allow {
		c.String(http.StatusOK, "Ok")
		return
	}
	c.String(http.StatusForbidden, "Ko")
}
