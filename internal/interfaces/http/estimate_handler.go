package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/dto"
)

// EstimateHandler cotizaciones, conversión a factura y PDF.
type EstimateHandler struct {
	uc  *crm.EstimateUseCase
	pdf *billing.PDFUseCase
	log zerolog.Logger
}

// NewEstimateHandler construye el handler.
func NewEstimateHandler(uc *crm.EstimateUseCase, pdf *billing.PDFUseCase, log zerolog.Logger) *EstimateHandler {
	return &EstimateHandler{uc: uc, pdf: pdf, log: log}
}

// Create POST /api/estimates
func (h *EstimateHandler) Create(c *fiber.Ctx) error {
	var in dto.EstimateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetMembership(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/estimates?search=&status=&limit=20&offset=0
func (h *EstimateHandler) List(c *fiber.Ctx) error {
	f, err := listFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), GetMembership(c), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/estimates/:id
func (h *EstimateHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetMembership(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update PUT /api/estimates/:id
func (h *EstimateHandler) Update(c *fiber.Ctx) error {
	var in dto.EstimateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetMembership(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/estimates/:id
func (h *EstimateHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetMembership(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Convert godoc
// @Summary      Convertir cotización aceptada en factura
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "id de la cotización"
// @Param        body  body  dto.ConvertEstimateRequest  false  "due_date"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimates/{id}/convert [post]
func (h *EstimateHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertEstimateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Convert(c.UserContext(), GetMembership(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PDF GET /api/estimates/:id/pdf
func (h *EstimateHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.EstimatePDF(c.UserContext(), GetMembership(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendPDF(c, data, filename)
}
