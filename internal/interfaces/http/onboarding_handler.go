package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/organization"
)

// OnboardingHandler asistente de alta e invitaciones.
type OnboardingHandler struct {
	onboarding *organization.OnboardingUseCase
	invites    *organization.InviteUseCase
	log        zerolog.Logger
}

// NewOnboardingHandler construye el handler.
func NewOnboardingHandler(onboarding *organization.OnboardingUseCase, invites *organization.InviteUseCase, log zerolog.Logger) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding, invites: invites, log: log}
}

// CreateOrganization godoc
// @Summary      Paso 1: crear organización
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrganizationRequest  true  "name, plan"
// @Success      201   {object}  dto.CreateOrganizationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/onboarding/organization [post]
func (h *OnboardingHandler) CreateOrganization(c *fiber.Ctx) error {
	var in dto.CreateOrganizationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.onboarding.CreateOrganization(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// InviteMembers POST /api/onboarding/invites (paso 2)
func (h *OnboardingHandler) InviteMembers(c *fiber.Ctx) error {
	var in dto.InviteMembersRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.onboarding.InviteMembers(c.UserContext(), GetMembership(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Complete POST /api/onboarding/complete (paso 3)
func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	out, err := h.onboarding.Complete(c.UserContext(), GetMembership(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListInvites GET /api/invites
func (h *OnboardingHandler) ListInvites(c *fiber.Ctx) error {
	out, err := h.invites.List(c.UserContext(), GetMembership(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateInvites POST /api/invites
func (h *OnboardingHandler) CreateInvites(c *fiber.Ctx) error {
	var in dto.InviteMembersRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.invites.Create(c.UserContext(), GetMembership(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RevokeInvite DELETE /api/invites/:id
func (h *OnboardingHandler) RevokeInvite(c *fiber.Ctx) error {
	if err := h.invites.Revoke(c.UserContext(), GetMembership(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AcceptInvite godoc
// @Summary      Aceptar invitación
// @Tags         invites
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AcceptInviteRequest  true  "invite_id"
// @Success      201   {object}  dto.MembershipResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/invites/accept [post]
func (h *OnboardingHandler) AcceptInvite(c *fiber.Ctx) error {
	var in dto.AcceptInviteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.InviteID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "invite_id requerido"})
	}
	s := GetSession(c)
	out, err := h.invites.Accept(c.UserContext(), s.UserID, s.Email, in.InviteID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
