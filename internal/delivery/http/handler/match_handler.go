package handler

import (
	"context"
	"errors"
	"strings"

	"kindred/internal/delivery/http/dto"
	"kindred/internal/delivery/http/middleware"
	"kindred/internal/domain/match"
	"kindred/internal/pkg/response"
	"kindred/internal/usecase/matchpool"
	profileuc "kindred/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
)

type MatchService interface {
	Dashboard(ctx context.Context, sessionID string) ([]match.MatchProfile, error)
	Decide(ctx context.Context, sessionID, matchID string, decision match.Decision) (match.ConnectionStatus, error)
	MutualMatches(ctx context.Context, sessionID string) ([]matchpool.MutualView, error)
	Clear(ctx context.Context, sessionID string) error
}

type MatchHandler struct {
	svc MatchService
}

func NewMatchHandler(svc MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/matches")
	grp.Get("/", h.List)
	grp.Get("/mutual", h.Mutual)
	grp.Delete("/decisions", h.ClearDecisions)
	grp.Post("/:match_id/decision", h.Decide)
}

func (h *MatchHandler) List(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	items, err := h.svc.Dashboard(c.Context(), sid)
	if err != nil {
		return mapMatchUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchListResponse(items))
}

func (h *MatchHandler) Decide(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	matchID := strings.TrimSpace(c.Params("match_id"))
	if matchID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	}

	var req dto.DecisionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	decision, err := match.ParseDecision(req.Decision)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	status, err := h.svc.Decide(c.Context(), sid, matchID, decision)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	res := dto.DecisionResponse{
		MatchID:          matchID,
		Decision:         decision,
		ConnectionStatus: status,
		Mutual:           status == match.StatusMutual,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *MatchHandler) Mutual(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	views, err := h.svc.MutualMatches(c.Context(), sid)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	out := make([]dto.MutualMatchResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.MutualMatchResponse{
			MatchID:   v.MatchID,
			MatchedAt: v.Timestamp,
			Profile:   v.Profile,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) ClearDecisions(c fiber.Ctx) error {
	sid, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := h.svc.Clear(c.Context(), sid); err != nil {
		return mapMatchUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func mapMatchUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, match.ErrInvalidDecision):
		return middleware.NewAppError(fiber.StatusBadRequest, "Decision must be interested or passed", nil, err)
	case errors.Is(err, matchpool.ErrMatchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Match not found", nil, err)
	case errors.Is(err, profileuc.ErrProfileCorrupted):
		return middleware.NewAppError(fiber.StatusConflict, "Stored profile was corrupted and has been reset", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
