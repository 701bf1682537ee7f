package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados persistidos de una factura. "overdue" no se guarda: se calcula con la fecha.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
	InvoiceStatusOverdue   = "overdue"
)

// Invoice factura emitida a un cliente.
type Invoice struct {
	ID         string
	OrgID      string
	CustomerID string
	ProjectID  string
	EstimateID string
	Number     string
	Status     string
	IssueDate  time.Time
	DueDate    time.Time
	PaidAt     *time.Time
	Items      []LineItem
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	OwnerID    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Recalculate actualiza los totales a partir de las líneas.
func (i *Invoice) Recalculate() {
	i.Subtotal, i.TaxTotal, i.Total = Totals(i.Items)
}

// IsOverdue: vencida si está enviada y ya pasó el día de vencimiento completo.
// Las fechas se comparan en UTC (due_date es DATE y pgx la devuelve a medianoche UTC).
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusSent {
		return false
	}
	d := i.DueDate.UTC()
	due := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return !now.UTC().Before(due)
}

// EffectiveStatus devuelve el estado visible al cliente (incluye "overdue").
func (i *Invoice) EffectiveStatus(now time.Time) string {
	if i.IsOverdue(now) {
		return InvoiceStatusOverdue
	}
	return i.Status
}
