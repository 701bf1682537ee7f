package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el resumen de reportes.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// CountCustomers número de clientes de la organización.
func (r *ReportRepo) CountCustomers(ctx context.Context, orgID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE org_id = $1`, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("reports.CountCustomers: %w", err)
	}
	return n, nil
}

// CountProjectsByStatus proyectos agrupados por estado.
func (r *ReportRepo) CountProjectsByStatus(ctx context.Context, orgID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM projects
		WHERE org_id = $1
		GROUP BY status`, orgID)
	if err != nil {
		return nil, fmt.Errorf("reports.CountProjectsByStatus: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("reports.CountProjectsByStatus scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// InvoiceTotalsByStatus cantidad y total facturado por estado persistido.
func (r *ReportRepo) InvoiceTotalsByStatus(ctx context.Context, orgID string) ([]repository.InvoiceAggregate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM invoices
		WHERE org_id = $1
		GROUP BY status
		ORDER BY status`, orgID)
	if err != nil {
		return nil, fmt.Errorf("reports.InvoiceTotalsByStatus: %w", err)
	}
	defer rows.Close()

	var out []repository.InvoiceAggregate
	for rows.Next() {
		var agg repository.InvoiceAggregate
		if err := rows.Scan(&agg.Status, &agg.Count, &agg.Total); err != nil {
			return nil, fmt.Errorf("reports.InvoiceTotalsByStatus scan: %w", err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

// OverdueInvoices facturas enviadas con vencimiento anterior a before.
func (r *ReportRepo) OverdueInvoices(ctx context.Context, orgID string, before time.Time) (int, decimal.Decimal, error) {
	var (
		n     int
		total decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM invoices
		WHERE org_id = $1 AND status = 'sent' AND due_date < $2`, orgID, before).Scan(&n, &total)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("reports.OverdueInvoices: %w", err)
	}
	return n, total, nil
}

// PaidBetween total cobrado con paid_at en [from, to).
func (r *ReportRepo) PaidBetween(ctx context.Context, orgID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM invoices
		WHERE org_id = $1 AND status = 'paid' AND paid_at >= $2 AND paid_at < $3`, orgID, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports.PaidBetween: %w", err)
	}
	return total, nil
}

// CountEstimatesByStatus cotizaciones de la organización en el estado dado.
func (r *ReportRepo) CountEstimatesByStatus(ctx context.Context, orgID, status string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM estimates WHERE org_id = $1 AND status = $2`, orgID, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reports.CountEstimatesByStatus: %w", err)
	}
	return n, nil
}
