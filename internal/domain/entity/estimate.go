package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización.
const (
	EstimateStatusDraft    = "draft"
	EstimateStatusSent     = "sent"
	EstimateStatusAccepted = "accepted"
	EstimateStatusDeclined = "declined"
)

// Estimate cotización enviada a un cliente. Una cotización aceptada puede
// convertirse en factura (InvoiceID queda enlazado).
type Estimate struct {
	ID         string
	OrgID      string
	CustomerID string
	ProjectID  string
	Number     string
	Status     string
	IssueDate  time.Time
	ValidUntil *time.Time
	Items      []LineItem
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	InvoiceID  string
	OwnerID    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Recalculate actualiza los totales a partir de las líneas.
func (e *Estimate) Recalculate() {
	e.Subtotal, e.TaxTotal, e.Total = Totals(e.Items)
}
