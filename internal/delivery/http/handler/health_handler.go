package handler

import (
	"context"
	"sort"
	"time"

	"kindred/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler reports the state of each storage tier. Only the durable
// tier is required; the session tier and remote store degrade gracefully,
// so their failures report "degraded" rather than an error status.
type HealthHandler struct {
	required map[string]Pinger
	optional map[string]Pinger
	timeout  time.Duration
}

func NewHealthHandler(required, optional map[string]Pinger) *HealthHandler {
	return &HealthHandler{required: required, optional: optional, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Check)
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	res := healthResponse{Status: "ok", Components: map[string]string{}}
	for _, name := range sortedNames(h.required) {
		if err := h.required[name].Ping(ctx); err != nil {
			res.Components[name] = "down: " + err.Error()
			res.Status = "down"
			continue
		}
		res.Components[name] = "ok"
	}
	for _, name := range sortedNames(h.optional) {
		if err := h.optional[name].Ping(ctx); err != nil {
			res.Components[name] = "unavailable"
			if res.Status == "ok" {
				res.Status = "degraded"
			}
			continue
		}
		res.Components[name] = "ok"
	}

	status := fiber.StatusOK
	if res.Status == "down" {
		status = fiber.StatusServiceUnavailable
	}
	return response.Success(c, status, res.Status, res)
}

func sortedNames(m map[string]Pinger) []string {
	out := make([]string, 0, len(m))
	for k, p := range m {
		if p != nil {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
