package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Locals keys de la petición. La sesión y la membresía viajan en c.Locals, nunca en globales.
const (
	LocalSession      = "session"
	LocalMembership   = "membership"
	LocalOrganization = "organization"
	LocalServiceRole  = "service_role"
)

// authenticator lo implementa *auth.AuthUseCase.
type authenticator interface {
	Authenticate(token string) (*auth.Session, error)
}

// AuthMiddleware valida el Bearer Token JWT y deja la sesión en c.Locals.
func AuthMiddleware(a authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token vacío"})
		}
		session, err := a.Authenticate(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalSession, session)
		return c.Next()
	}
}

// GetSession devuelve la sesión de la petición (después de AuthMiddleware).
func GetSession(c *fiber.Ctx) *auth.Session {
	s, _ := c.Locals(LocalSession).(*auth.Session)
	return s
}

// GetUserID devuelve el id del usuario autenticado o "".
func GetUserID(c *fiber.Ctx) string {
	if s := GetSession(c); s != nil {
		return s.UserID
	}
	return ""
}

// GetMembership devuelve la membresía resuelta por OrgContext.
func GetMembership(c *fiber.Ctx) *entity.Membership {
	m, _ := c.Locals(LocalMembership).(*entity.Membership)
	return m
}

// GetOrganization devuelve la organización resuelta por OrgContext.
func GetOrganization(c *fiber.Ctx) *entity.Organization {
	o, _ := c.Locals(LocalOrganization).(*entity.Organization)
	return o
}

// GetRole rol del llamador en la organización de la petición.
func GetRole(c *fiber.Ctx) string {
	if m := GetMembership(c); m != nil {
		return string(m.Role)
	}
	return ""
}
