package middleware

import (
	"errors"
	"time"

	"kindred/internal/metrics"
	"kindred/internal/platform/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type AccessLogMiddleware struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewAccessLogMiddleware(log *logger.Logger, m *metrics.Metrics) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: log, metrics: m}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(RequestIDHeader, rid)

		err := c.Next()

		dur := time.Since(start)
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.metrics.ObserveHTTP(c.Method(), route, status, dur)

		m.logger.Info("[HTTP] access",
			"rid", rid,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"latency", dur.String(),
			"req_bytes", c.Request().Header.ContentLength(),
			"resp_bytes", c.Response().Header.ContentLength(),
			"ua", c.Get("User-Agent"),
		)

		return err
	}
}
