package handler

import (
	"strings"
	"time"

	"attendance-service/internal/apperr"
	"attendance-service/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie = "session"
	identityKey   = "identity"
)

func recoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
	})
}

func corsMiddleware(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
	})
}

// loginRateLimiter throttles login attempts per client IP.
func loginRateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "too many login attempts, try again later",
			})
		},
	})
}

// requestLogger writes one access log line per request. Errors are rendered
// here so the logged status is the one sent to the client.
func requestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := logger.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})
		if id, found := identityFrom(c); found {
			entry = entry.WithFields(logrus.Fields{
				"role":    id.Role,
				"user_id": id.ID,
			})
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
		return nil
	}
}

// session resolves the caller from the session cookie or a Bearer token.
func session(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(sessionCookie)
		if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if raw == "" {
			return apperr.ErrUnauthenticated
		}

		id, err := tokens.Parse(raw)
		if err != nil {
			return err
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

func requireRole(role auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, found := identityFrom(c)
		if !found {
			return apperr.ErrUnauthenticated
		}
		if err := id.Require(role); err != nil {
			return err
		}
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(identityKey).(auth.Identity)
	return id, ok
}

// caller returns the identity set by the session middleware. Routes using it
// are always mounted behind that middleware.
func caller(c *fiber.Ctx) auth.Identity {
	id, _ := identityFrom(c)
	return id
}
