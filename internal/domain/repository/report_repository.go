package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceAggregate totales de facturas agrupados por estado persistido.
type InvoiceAggregate struct {
	Status string
	Count  int
	Total  decimal.Decimal
}

// ReportRepository consultas de solo lectura para el resumen de reportes.
type ReportRepository interface {
	CountCustomers(ctx context.Context, orgID string) (int, error)
	CountProjectsByStatus(ctx context.Context, orgID string) (map[string]int, error)
	InvoiceTotalsByStatus(ctx context.Context, orgID string) ([]InvoiceAggregate, error)
	// OverdueInvoices suma las facturas enviadas cuyo vencimiento es anterior a before.
	OverdueInvoices(ctx context.Context, orgID string, before time.Time) (int, decimal.Decimal, error)
	// PaidBetween suma lo cobrado (paid_at) en [from, to).
	PaidBetween(ctx context.Context, orgID string, from, to time.Time) (decimal.Decimal, error)
	CountEstimatesByStatus(ctx context.Context, orgID, status string) (int, error)
}
