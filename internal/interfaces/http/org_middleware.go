package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// HeaderOrgID organización sobre la que actúa la petición.
const HeaderOrgID = "X-Org-ID"

// orgResolver es el contrato mínimo que necesita el middleware. Lo implementa
// *access.Resolver; el uso de interfaz permite probar el middleware aislado.
type orgResolver interface {
	Resolve(ctx context.Context, userID, requestedOrgID string) (*entity.Membership, *entity.Organization, error)
}

// OrgContext resuelve la membresía activa del usuario en la organización de X-Org-ID (o en
// su organización por defecto) y la deja en c.Locals. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 404 SETUP_REQUIRED → sin organización ni membresía; el cliente va al onboarding.
//   - 403 FORBIDDEN      → X-Org-ID de una organización ajena o desactivada.
//   - 500 INTERNAL       → fallo de infraestructura al consultar la BD.
func OrgContext(resolver orgResolver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "sesión no encontrada en la petición",
			})
		}

		m, org, err := resolver.Resolve(c.UserContext(), userID, strings.TrimSpace(c.Get(HeaderOrgID)))
		if err != nil {
			return respondError(c, log, err)
		}

		c.Locals(LocalMembership, m)
		c.Locals(LocalOrganization, org)
		return c.Next()
	}
}
