package handler

import (
	"context"
	"errors"

	"kindred/internal/delivery/http/dto"
	"kindred/internal/delivery/http/middleware"
	"kindred/internal/domain/assessment"
	"kindred/internal/domain/profile"
	"kindred/internal/pkg/response"
	profileuc "kindred/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
)

type ProfileService interface {
	GetUserProfile(ctx context.Context, sessionID string) (*profile.UserProfile, error)
	SaveUserProfile(ctx context.Context, sessionID string, p *profile.UserProfile) error
	UpdateAssessmentResult(ctx context.Context, sessionID string, res assessment.Result) (*profile.UserProfile, error)
	UpdateOnboardingProgress(ctx context.Context, sessionID string, phase, step int) (*profile.UserProfile, error)
	CompleteOnboardingWithReadinessScore(ctx context.Context, sessionID string, score int) (*profile.UserProfile, error)
	Status(ctx context.Context, sessionID string) (profileuc.Status, error)
	Reset(ctx context.Context, sessionID string) error
}

// PoolInvalidator drops a session's cached candidate pool after the profile
// it was scored against changes.
type PoolInvalidator interface {
	Invalidate(sessionID string)
}

type ProfileHandler struct {
	svc   ProfileService
	pools PoolInvalidator
}

func NewProfileHandler(svc ProfileService, pools PoolInvalidator) *ProfileHandler {
	return &ProfileHandler{svc: svc, pools: pools}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/profile")
	grp.Get("/", h.Get)
	grp.Put("/", h.Save)
	grp.Delete("/", h.Reset)
	grp.Get("/status", h.Status)
	grp.Put("/assessments/:dimension", h.UpdateAssessment)
	grp.Put("/onboarding/progress", h.UpdateProgress)
	grp.Post("/onboarding/complete", h.CompleteOnboarding)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	p, err := h.svc.GetUserProfile(c.Context(), sid)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	if p == nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) Save(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	var req dto.SaveProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.svc.SaveUserProfile(c.Context(), sid, req.ToProfile(sid)); err != nil {
		return mapProfileUsecaseError(err)
	}
	h.invalidate(sid)

	p, err := h.svc.GetUserProfile(c.Context(), sid)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	if p == nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) Reset(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := h.svc.Reset(c.Context(), sid); err != nil {
		return mapProfileUsecaseError(err)
	}
	h.invalidate(sid)
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ProfileHandler) Status(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	st, err := h.svc.Status(c.Context(), sid)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}

// UpdateAssessment takes the dimension's record as the raw request body.
func (h *ProfileHandler) UpdateAssessment(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	dim, err := assessment.ParseDimension(c.Params("dimension"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown assessment dimension", nil, err)
	}
	res, err := assessment.DecodeResult(dim, c.Body())
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	p, err := h.svc.UpdateAssessmentResult(c.Context(), sid, res)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	h.invalidate(sid)
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) UpdateProgress(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	var req dto.OnboardingProgressRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	p, err := h.svc.UpdateOnboardingProgress(c.Context(), sid, req.Phase, req.Step)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) CompleteOnboarding(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	var req dto.CompleteOnboardingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.ReadinessScore == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "readinessScore is required", nil, nil)
	}

	p, err := h.svc.CompleteOnboardingWithReadinessScore(c.Context(), sid, *req.ReadinessScore)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) invalidate(sid string) {
	if h.pools != nil {
		h.pools.Invalidate(sid)
	}
}

func requireSession(c fiber.Ctx) (string, error) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		return "", middleware.NewAppError(fiber.StatusBadRequest, "Missing session", nil, nil)
	}
	return sid, nil
}

func mapProfileUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, profileuc.ErrValidation), errors.Is(err, profileuc.ErrInvalidDimension):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid profile data", nil, err)
	case errors.Is(err, profileuc.ErrLockContention):
		return middleware.NewAppError(fiber.StatusConflict, "Onboarding completion already in progress", nil, err)
	case errors.Is(err, profileuc.ErrProfileCorrupted):
		return middleware.NewAppError(fiber.StatusConflict, "Stored profile was corrupted and has been reset", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
