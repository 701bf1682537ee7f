// Package analytics contiene el resumen de reportes de la organización.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// SummaryUseCase genera el resumen de reportes (viewReports).
//
// Fuente de datos: ReportRepository (consultas read-only).
type SummaryUseCase struct {
	reports repository.ReportRepository
	now     func() time.Time
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(reports repository.ReportRepository) *SummaryUseCase {
	return &SummaryUseCase{reports: reports, now: time.Now}
}

// GetSummary construye el ReportSummaryDTO de la organización del llamador.
//
// Seis consultas en paralelo; la primera que falle cancela el resto:
//  1. CountCustomers
//  2. CountProjectsByStatus
//  3. CountEstimatesByStatus(sent)  → cotizaciones pendientes
//  4. InvoiceTotalsByStatus         → pagado y por cobrar
//  5. OverdueInvoices(hoy 00:00)    → vencidas
//  6. PaidBetween(mes actual y mes anterior)
func (uc *SummaryUseCase) GetSummary(ctx context.Context, actor *entity.Membership) (*dto.ReportSummaryDTO, error) {
	if err := access.Require(actor, rbac.ViewReports); err != nil {
		return nil, err
	}
	orgID := actor.OrgID
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	// vencidas con el mismo corte en UTC que Invoice.IsOverdue
	utc := now.UTC()
	todayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	lastMonth := monthStart.AddDate(0, -1, 0)

	var (
		out          = &dto.ReportSummaryDTO{DateLabel: monthLabel(now)}
		totals       []repository.InvoiceAggregate
		thisRevenue  decimal.Decimal
		lastRevenue  decimal.Decimal
		overdueCount int
		overdueTotal decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Customers, err = uc.reports.CountCustomers(gctx, orgID)
		return wrap("clientes", err)
	})
	g.Go(func() (err error) {
		out.ProjectsByStatus, err = uc.reports.CountProjectsByStatus(gctx, orgID)
		return wrap("proyectos", err)
	})
	g.Go(func() (err error) {
		out.PendingEstimates, err = uc.reports.CountEstimatesByStatus(gctx, orgID, entity.EstimateStatusSent)
		return wrap("cotizaciones", err)
	})
	g.Go(func() (err error) {
		totals, err = uc.reports.InvoiceTotalsByStatus(gctx, orgID)
		return wrap("facturas", err)
	})
	g.Go(func() (err error) {
		overdueCount, overdueTotal, err = uc.reports.OverdueInvoices(gctx, orgID, todayStart)
		return wrap("vencidas", err)
	})
	g.Go(func() (err error) {
		thisRevenue, err = uc.reports.PaidBetween(gctx, orgID, monthStart, nextMonth)
		if err != nil {
			return wrap("ingresos del mes", err)
		}
		lastRevenue, err = uc.reports.PaidBetween(gctx, orgID, lastMonth, monthStart)
		return wrap("ingresos del mes anterior", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	if out.ProjectsByStatus == nil {
		out.ProjectsByStatus = map[string]int{}
	}
	out.PaidTotal, out.OutstandingTotal = decimal.Zero, decimal.Zero
	for _, agg := range totals {
		switch agg.Status {
		case entity.InvoiceStatusPaid:
			out.PaidTotal = out.PaidTotal.Add(agg.Total)
		case entity.InvoiceStatusSent:
			out.OutstandingTotal = out.OutstandingTotal.Add(agg.Total)
		}
	}
	out.PaidTotal = out.PaidTotal.Round(2)
	out.OutstandingTotal = out.OutstandingTotal.Round(2)
	out.OverdueCount = overdueCount
	out.OverdueTotal = overdueTotal.Round(2)
	out.RevenueThisMonth = thisRevenue.Round(2)
	out.RevenueLastMonth = lastRevenue.Round(2)
	out.RevenueGrowthPct = growth(thisRevenue, lastRevenue)
	return out, nil
}

// growth variación porcentual respecto al mes anterior. Sin ingresos el mes anterior
// devuelve 100 si hubo ingresos este mes y 0 si no.
func growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("reportes: %s: %w", what, err)
	}
	return nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
