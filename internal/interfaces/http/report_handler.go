package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/crm-api/internal/application/analytics"
)

// ReportHandler maneja los endpoints de reportes.
type ReportHandler struct {
	uc  *appanalytics.SummaryUseCase
	log zerolog.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *appanalytics.SummaryUseCase, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// GetSummary devuelve el resumen de la organización: clientes, proyectos por estado,
// cotizaciones pendientes, cartera, vencidas e ingresos del mes contra el anterior.
// GET /api/reports/summary
//
// No requiere parámetros; las fechas se calculan en el servidor.
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetMembership(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}
