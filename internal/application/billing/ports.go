package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Tipos de documento imprimibles.
const (
	KindEstimate = "estimate"
	KindInvoice  = "invoice"
)

// PartyForPDF datos de contacto del emisor o del cliente.
type PartyForPDF struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// DocumentForPDF vista plana de una cotización o factura lista para imprimir.
type DocumentForPDF struct {
	Kind      string // KindEstimate | KindInvoice
	Number    string
	Status    string // estado visible (las facturas incluyen "overdue")
	IssueDate time.Time
	// DueDate vencimiento de la factura o validez de la cotización; nil si no aplica.
	DueDate  *time.Time
	Issuer   PartyForPDF
	Customer PartyForPDF
	Items    []entity.LineItem
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
	Notes    string
}

// PDFGenerator puerto de salida para la representación gráfica de un documento.
type PDFGenerator interface {
	Generate(ctx context.Context, doc *DocumentForPDF) ([]byte, error)
}
