package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemDTO línea de cotización o factura. Si ProductID viene y Description/UnitPrice
// no, se toman del catálogo.
type LineItemDTO struct {
	ProductID   string           `json:"product_id,omitempty"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
}

// EstimateRequest alta/edición de cotización.
type EstimateRequest struct {
	CustomerID string        `json:"customer_id"`
	ProjectID  string        `json:"project_id,omitempty"`
	Number     string        `json:"number,omitempty"`
	Status     string        `json:"status,omitempty"`
	IssueDate  *time.Time    `json:"issue_date,omitempty"`
	ValidUntil *time.Time    `json:"valid_until,omitempty"`
	Items      []LineItemDTO `json:"items"`
	Notes      string        `json:"notes,omitempty"`
}

// EstimateResponse cotización con líneas y totales.
type EstimateResponse struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id"`
	CustomerID string          `json:"customer_id"`
	ProjectID  string          `json:"project_id,omitempty"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	IssueDate  time.Time       `json:"issue_date"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	Items      []LineItemDTO   `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	InvoiceID  string          `json:"invoice_id,omitempty"`
	OwnerID    string          `json:"owner_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EstimateListResponse lista paginada de cotizaciones.
type EstimateListResponse struct {
	Items []EstimateResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ConvertEstimateRequest conversión de cotización aceptada a factura.
type ConvertEstimateRequest struct {
	DueDate *time.Time `json:"due_date,omitempty"`
}

// InvoiceRequest alta/edición de factura.
type InvoiceRequest struct {
	CustomerID string        `json:"customer_id"`
	ProjectID  string        `json:"project_id,omitempty"`
	Number     string        `json:"number,omitempty"`
	Status     string        `json:"status,omitempty"`
	IssueDate  *time.Time    `json:"issue_date,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	Items      []LineItemDTO `json:"items"`
	Notes      string        `json:"notes,omitempty"`
}

// InvoiceResponse factura con líneas, totales y estado efectivo (incluye "overdue").
type InvoiceResponse struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id"`
	CustomerID string          `json:"customer_id"`
	ProjectID  string          `json:"project_id,omitempty"`
	EstimateID string          `json:"estimate_id,omitempty"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Items      []LineItemDTO   `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	OwnerID    string          `json:"owner_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
