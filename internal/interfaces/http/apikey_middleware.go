package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
)

// HeaderAPIKey llave pública (anon) o de servicio del proyecto.
const HeaderAPIKey = "apikey"

// APIKey exige que toda petición a /api traiga la llave anon o la de servicio. Con la de
// servicio marca la petición como privilegiada (ver RequireServiceRole).
func APIKey(anonKey, serviceRoleKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderAPIKey)
		switch {
		case key == "":
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_API_KEY", Message: "header apikey requerido"})
		case serviceRoleKey != "" && equalKey(key, serviceRoleKey):
			c.Locals(LocalServiceRole, true)
		case !equalKey(key, anonKey):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_API_KEY", Message: "apikey inválida"})
		}
		return c.Next()
	}
}

// RequireServiceRole limita la ruta a peticiones con la llave de servicio.
func RequireServiceRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, _ := c.Locals(LocalServiceRole).(bool); !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "se requiere la llave de servicio"})
		}
		return c.Next()
	}
}

func equalKey(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
