package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ptv/internal/domain/feedback"
)

// FeedbackProcessor forwards feedback to the responsible organization.
type FeedbackProcessor interface {
	ProcessFeedback(ctx context.Context, vm feedback.VmFeedback) (*feedback.Result, error)
}

// FeedbackHandler handles POST /feedback.
type FeedbackHandler struct {
	*BaseHandler
	service FeedbackProcessor
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(base *BaseHandler, service FeedbackProcessor) *FeedbackHandler {
	return &FeedbackHandler{BaseHandler: base, service: service}
}

// Send handles POST /feedback.
func (h *FeedbackHandler) Send(c *gin.Context) {
	var vm feedback.VmFeedback
	if !h.BindJSON(c, &vm) {
		return
	}
	result, err := h.service.ProcessFeedback(c.Request.Context(), vm)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(result.Status, result)
}
