package dto

import "github.com/shopspring/decimal"

// ReportSummaryDTO respuesta de GET /api/reports/summary.
type ReportSummaryDTO struct {
	Customers        int            `json:"customers"`
	ProjectsByStatus map[string]int `json:"projects_by_status"`
	PendingEstimates int            `json:"pending_estimates"`

	// Facturación
	PaidTotal        decimal.Decimal `json:"paid_total"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"` // enviadas y no pagadas (incluye vencidas)
	OverdueCount     int             `json:"overdue_count"`
	OverdueTotal     decimal.Decimal `json:"overdue_total"`

	// Cobrado en el mes en curso vs el mes anterior
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	RevenueLastMonth decimal.Decimal `json:"revenue_last_month"`
	RevenueGrowthPct decimal.Decimal `json:"revenue_growth_pct"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}
