package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Guarda el estado persistido; "overdue" se calcula en el dominio.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, org_id, customer_id, project_id, estimate_id, number, status, issue_date,
	due_date, paid_at, items, subtotal, tax_total, total, notes, owner_id, created_at, updated_at`

// Create persiste la factura con sus líneas. Número repetido en la organización devuelve ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.OrgID, inv.CustomerID, nullIfEmpty(inv.ProjectID), nullIfEmpty(inv.EstimateID),
		inv.Number, inv.Status, inv.IssueDate, inv.DueDate, inv.PaidAt, lineItems(inv.Items),
		inv.Subtotal, inv.TaxTotal, inv.Total, inv.Notes, inv.OwnerID, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListByOrg facturas de la organización, más recientes primero.
func (r *InvoiceRepo) ListByOrg(ctx context.Context, orgID string) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update reemplaza la factura completa (líneas, estado y fecha de pago incluidos).
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = $2, project_id = $3, number = $4, status = $5, issue_date = $6,
		    due_date = $7, paid_at = $8, items = $9, subtotal = $10, tax_total = $11,
		    total = $12, notes = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.CustomerID, nullIfEmpty(inv.ProjectID), inv.Number, inv.Status, inv.IssueDate,
		inv.DueDate, inv.PaidAt, lineItems(inv.Items), inv.Subtotal, inv.TaxTotal,
		inv.Total, inv.Notes, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.Number)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una factura por ID.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// NextNumber siguiente consecutivo de la organización para el prefijo.
func (r *InvoiceRepo) NextNumber(ctx context.Context, orgID, prefix string) (string, error) {
	return nextDocumentNumber(ctx, r.q, orgID, prefix)
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                   entity.Invoice
		projectID, estimateID *string
	)
	err := row.Scan(
		&inv.ID, &inv.OrgID, &inv.CustomerID, &projectID, &estimateID, &inv.Number, &inv.Status, &inv.IssueDate,
		&inv.DueDate, &inv.PaidAt, &inv.Items, &inv.Subtotal, &inv.TaxTotal, &inv.Total, &inv.Notes,
		&inv.OwnerID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ProjectID = deref(projectID)
	inv.EstimateID = deref(estimateID)
	return &inv, nil
}
