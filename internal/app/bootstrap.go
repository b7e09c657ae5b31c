package app

import (
	"context"
	"fmt"
	"strings"

	"kindred/internal/config"
	"kindred/internal/delivery/http/handler"
	"kindred/internal/delivery/http/middleware"
	"kindred/internal/delivery/http/routes"
	"kindred/internal/platform/logger"
	"kindred/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container, starts the event hub and returns the app
// with a cleanup func that releases everything.
func Bootstrap(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	go c.Hub.Run()

	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger, c.Metrics).Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	required := map[string]handler.Pinger{
		"durable": handler.PingFunc(c.DurableDB.PingContext),
	}
	optional := map[string]handler.Pinger{
		"redis": c.Redis,
	}
	if c.DB != nil {
		optional["postgres"] = c.DB
	}

	routes.NewRegistry(routes.Handlers{
		Health:        handler.NewHealthHandler(required, optional),
		Profile:       handler.NewProfileHandler(c.Profiles, c.Matches),
		Matches:       handler.NewMatchHandler(c.Matches),
		Compatibility: handler.NewCompatibilityHandler(),
		Events:        ws.NewHandler(c.Hub, c.Logger),
		Session:       middleware.NewSessionMiddleware(c.Redis, c.Config.Redis.TTL, c.Logger),
		Metrics:       c.Metrics.Handler(),
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
