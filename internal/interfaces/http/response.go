package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
)

// listFilter lee search, status, limit y offset de la query.
func listFilter(c *fiber.Ctx) (dto.ListFilter, error) {
	var f dto.ListFilter
	if err := c.QueryParser(&f); err != nil {
		return f, fmt.Errorf("%w: parámetros de consulta inválidos", domain.ErrInvalidInput)
	}
	return f, nil
}

func sendPDF(c *fiber.Ctx, data []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
