package handler

import (
	"strings"
	"time"

	"attendance-service/internal/apperr"
	"attendance-service/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      auth.Identity `json:"user"`
}

func parseLogin(c *fiber.Ctx) (loginRequest, error) {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperr.Validation("invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return req, apperr.Validation("email and password are required")
	}
	return req, nil
}

func (h *Handler) adminLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	admin, err := h.adminService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return h.startSession(c, auth.Identity{
		ID:    admin.ID,
		Role:  auth.RoleAdmin,
		Name:  admin.Name,
		Email: admin.Email,
	})
}

func (h *Handler) professorLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	professor, err := h.professorService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return h.startSession(c, auth.Identity{
		ID:    professor.ID,
		Role:  auth.RoleProfessor,
		Name:  professor.Name,
		Email: professor.Email,
	})
}

func (h *Handler) startSession(c *fiber.Ctx, id auth.Identity) error {
	token, expires, err := h.tokens.Issue(id)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ok(c, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      id,
	})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return message(c, "logged out")
}

func (h *Handler) me(c *fiber.Ctx) error {
	id := caller(c)
	ctx := c.UserContext()

	switch id.Role {
	case auth.RoleAdmin:
		admin, err := h.adminService.Get(ctx, id.ID)
		if err != nil {
			return err
		}
		return ok(c, fiber.Map{"role": id.Role, "user": admin})
	case auth.RoleProfessor:
		professor, err := h.professorService.Get(ctx, id.ID)
		if err != nil {
			return err
		}
		return ok(c, fiber.Map{"role": id.Role, "user": professor})
	}
	return apperr.ErrUnauthenticated
}
