package middleware

import (
	"context"
	"strings"
	"time"

	"kindred/internal/pkg/storekey"
	"kindred/internal/platform/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	SessionHeader   = "X-Session-ID"
	CtxSessionIDKey = "session_id"

	maxSessionIDLength = 128
)

// SessionRegistry is the session tier's key API; *cache.Redis satisfies it.
type SessionRegistry interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Touch(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SessionMiddleware resolves the caller's session. A request without a
// usable X-Session-ID gets a fresh one, echoed back in the response header.
// The session key's TTL slides on every request.
type SessionMiddleware struct {
	store  SessionRegistry
	ttl    time.Duration
	logger *logger.Logger
}

func NewSessionMiddleware(store SessionRegistry, ttl time.Duration, log *logger.Logger) *SessionMiddleware {
	return &SessionMiddleware{store: store, ttl: ttl, logger: log}
}

func (m *SessionMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		sid, ok := sessionIDFromHeader(c.Get(SessionHeader))
		if !ok {
			sid = uuid.NewString()
		}

		m.track(c.Context(), sid)

		c.Locals(CtxSessionIDKey, sid)
		c.Set(SessionHeader, sid)
		return c.Next()
	}
}

// track records the session in the session tier. Failures only cost the
// TTL bookkeeping, so they are logged and the request proceeds.
func (m *SessionMiddleware) track(ctx context.Context, sid string) {
	if m == nil || m.store == nil {
		return
	}
	key := storekey.Session(sid)
	touched, err := m.store.Touch(ctx, key, m.ttl)
	if err != nil {
		m.logger.Warn("[Session] touch failed", "session_id", sid, "err", err)
		return
	}
	if touched {
		return
	}
	if _, err := m.store.SetIfNotExists(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl); err != nil {
		m.logger.Warn("[Session] register failed", "session_id", sid, "err", err)
	}
}

// SessionID returns the id resolved by SessionMiddleware.
func SessionID(c fiber.Ctx) (string, bool) {
	sid, ok := c.Locals(CtxSessionIDKey).(string)
	if !ok || sid == "" {
		return "", false
	}
	return sid, true
}

func sessionIDFromHeader(raw string) (string, bool) {
	sid := strings.TrimSpace(raw)
	if sid == "" || len(sid) > maxSessionIDLength {
		return "", false
	}
	for _, r := range sid {
		if !(r == '-' || r == '_' || r == '.' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return "", false
		}
	}
	return sid, true
}
