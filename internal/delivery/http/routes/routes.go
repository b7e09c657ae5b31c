package routes

import (
	"net/http"

	"kindred/internal/delivery/http/handler"
	"kindred/internal/delivery/http/middleware"
	"kindred/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Handlers struct {
	Health        *handler.HealthHandler
	Profile       *handler.ProfileHandler
	Matches       *handler.MatchHandler
	Compatibility *handler.CompatibilityHandler
	Events        *ws.Handler
	Session       *middleware.SessionMiddleware
	Metrics       http.Handler
}

type Registry struct {
	h Handlers
}

func NewRegistry(h Handlers) *Registry {
	return &Registry{h: h}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerEvents(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.h.Health != nil {
		r.h.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerMetrics(app *fiber.App) {
	if r.h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.h.Metrics))
	}
}

func (r *Registry) registerEvents(app *fiber.App) {
	if r.h.Events != nil {
		app.Get("/ws/matches", r.h.Events.HandleMatchesWS)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.h)
}

// RegisterV1 mounts the API. Profile and match routes run behind the session
// middleware; compatibility scoring is registered first and needs none.
func RegisterV1(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Compatibility != nil {
		h.Compatibility.RegisterRoutes(r)
	}

	scoped := r
	if h.Session != nil {
		scoped = r.Group("", h.Session.Middleware())
	}
	if h.Profile != nil {
		h.Profile.RegisterRoutes(scoped)
	}
	if h.Matches != nil {
		h.Matches.RegisterRoutes(scoped)
	}
}
