package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

// EstimateRepo implementación de EstimateRepository (usable con pool o tx).
// Las líneas se guardan como JSONB en la misma fila.
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

const estimateColumns = `id, org_id, customer_id, project_id, number, status, issue_date, valid_until,
	items, subtotal, tax_total, total, notes, invoice_id, owner_id, created_at, updated_at`

// Create persiste la cotización con sus líneas.
func (r *EstimateRepo) Create(ctx context.Context, e *entity.Estimate) error {
	query := `
		INSERT INTO estimates (` + estimateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.OrgID, e.CustomerID, nullIfEmpty(e.ProjectID), e.Number, e.Status, e.IssueDate, e.ValidUntil,
		lineItems(e.Items), e.Subtotal, e.TaxTotal, e.Total, e.Notes, nullIfEmpty(e.InvoiceID), e.OwnerID,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de cotización %s", domain.ErrDuplicate, e.Number)
		}
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *EstimateRepo) GetByID(ctx context.Context, id string) (*entity.Estimate, error) {
	e, err := scanEstimate(r.q.QueryRow(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	return e, nil
}

// ListByOrg cotizaciones de la organización, más recientes primero.
func (r *EstimateRepo) ListByOrg(ctx context.Context, orgID string) ([]*entity.Estimate, error) {
	rows, err := r.q.Query(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer rows.Close()
	var list []*entity.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update reemplaza la cotización completa (líneas incluidas).
func (r *EstimateRepo) Update(ctx context.Context, e *entity.Estimate) error {
	query := `
		UPDATE estimates
		SET customer_id = $2, project_id = $3, number = $4, status = $5, issue_date = $6,
		    valid_until = $7, items = $8, subtotal = $9, tax_total = $10, total = $11,
		    notes = $12, invoice_id = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		e.ID, e.CustomerID, nullIfEmpty(e.ProjectID), e.Number, e.Status, e.IssueDate,
		e.ValidUntil, lineItems(e.Items), e.Subtotal, e.TaxTotal, e.Total,
		e.Notes, nullIfEmpty(e.InvoiceID), e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de cotización %s", domain.ErrDuplicate, e.Number)
		}
		return fmt.Errorf("update estimate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una cotización por ID.
func (r *EstimateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM estimates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	return nil
}

// NextNumber siguiente consecutivo de la organización para el prefijo.
func (r *EstimateRepo) NextNumber(ctx context.Context, orgID, prefix string) (string, error) {
	return nextDocumentNumber(ctx, r.q, orgID, prefix)
}

func scanEstimate(row pgx.Row) (*entity.Estimate, error) {
	var (
		e                    entity.Estimate
		projectID, invoiceID *string
	)
	err := row.Scan(
		&e.ID, &e.OrgID, &e.CustomerID, &projectID, &e.Number, &e.Status, &e.IssueDate, &e.ValidUntil,
		&e.Items, &e.Subtotal, &e.TaxTotal, &e.Total, &e.Notes, &invoiceID, &e.OwnerID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ProjectID = deref(projectID)
	e.InvoiceID = deref(invoiceID)
	return &e, nil
}

// lineItems evita guardar JSON null cuando no hay líneas.
func lineItems(items []entity.LineItem) []entity.LineItem {
	if items == nil {
		return []entity.LineItem{}
	}
	return items
}
