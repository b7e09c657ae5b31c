package handler

import (
	"kindred/internal/delivery/http/dto"
	"kindred/internal/delivery/http/middleware"
	"kindred/internal/domain/matching"
	"kindred/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// CompatibilityHandler scores two arbitrary assessment records. It is
// stateless and needs no session.
type CompatibilityHandler struct{}

func NewCompatibilityHandler() *CompatibilityHandler {
	return &CompatibilityHandler{}
}

func (h *CompatibilityHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/compatibility", h.Calculate)
}

func (h *CompatibilityHandler) Calculate(c fiber.Ctx) error {
	var req dto.CompatibilityRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	score := matching.Calculate(req.User, req.Candidate)
	return response.Success(c, fiber.StatusOK, response.MessageOK, score)
}
