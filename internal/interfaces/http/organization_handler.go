package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/organization"
)

// OrganizationHandler organización actual, equipo y listado administrativo.
type OrganizationHandler struct {
	orgs    *organization.OrganizationUseCase
	members *organization.MembershipUseCase
	log     zerolog.Logger
}

// NewOrganizationHandler construye el handler.
func NewOrganizationHandler(orgs *organization.OrganizationUseCase, members *organization.MembershipUseCase, log zerolog.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, members: members, log: log}
}

// MyOrganizations GET /api/me/organizations
func (h *OrganizationHandler) MyOrganizations(c *fiber.Ctx) error {
	out, err := h.orgs.ListMine(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Permissions godoc
// @Summary      Rol y capacidades del usuario en la organización
// @Tags         me
// @Produce      json
// @Param        X-Org-ID  header  string  false  "organización"
// @Success      200  {object}  dto.PermissionsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/me/permissions [get]
func (h *OrganizationHandler) Permissions(c *fiber.Ctx) error {
	out, err := h.orgs.Permissions(GetMembership(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get GET /api/organization
func (h *OrganizationHandler) Get(c *fiber.Ctx) error {
	out, err := h.orgs.Get(c.UserContext(), GetMembership(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Rename PATCH /api/organization
func (h *OrganizationHandler) Rename(c *fiber.Ctx) error {
	var in dto.UpdateOrganizationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.orgs.Rename(c.UserContext(), GetMembership(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ChangePlan PATCH /api/organization/plan
func (h *OrganizationHandler) ChangePlan(c *fiber.Ctx) error {
	var in dto.ChangePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.orgs.ChangePlan(c.UserContext(), GetMembership(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Deactivate POST /api/organization/deactivate
func (h *OrganizationHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.orgs.Deactivate(c.UserContext(), GetMembership(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListStaff GET /api/staff?include_inactive=true
func (h *OrganizationHandler) ListStaff(c *fiber.Ctx) error {
	out, err := h.members.List(c.UserContext(), GetMembership(c), c.QueryBool("include_inactive", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateStaff PATCH /api/staff/:id
func (h *OrganizationHandler) UpdateStaff(c *fiber.Ctx) error {
	var in dto.UpdateMembershipRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.members.UpdateRole(c.UserContext(), GetMembership(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeactivateStaff POST /api/staff/:id/deactivate
func (h *OrganizationHandler) DeactivateStaff(c *fiber.Ctx) error {
	out, err := h.members.Deactivate(c.UserContext(), GetMembership(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ReactivateStaff POST /api/staff/:id/reactivate
func (h *OrganizationHandler) ReactivateStaff(c *fiber.Ctx) error {
	out, err := h.members.Reactivate(c.UserContext(), GetMembership(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// AdminList GET /api/admin/organizations?limit=20&offset=0 (llave de servicio)
func (h *OrganizationHandler) AdminList(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	out, err := h.orgs.ListAll(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
