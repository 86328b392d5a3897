package handlers

import (
	"medtrack-api/internal/adapters/http/middleware"
	"medtrack-api/internal/core/domain"
	"medtrack-api/internal/core/services"
	"medtrack-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles feedback endpoints
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Submit records feedback from the caller
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateFeedbackInput true "Feedback"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return response.Unauthorized(c, domain.ErrUnauthenticated.Error())
	}

	var req services.CreateFeedbackInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	fb, err := h.feedbackService.Submit(c.UserContext(), claims.UserID, &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.Created(c, "Thank you for your feedback", fb)
}

// List returns all feedback
// @Summary List feedback
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	items, err := h.feedbackService.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Feedback retrieved successfully", items)
}
