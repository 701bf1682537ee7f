package entity

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineItem línea de una cotización o factura. TaxRate en porcentaje (19 = 19%).
type LineItem struct {
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// Subtotal cantidad × precio unitario.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Totals suma subtotal, impuestos y total de las líneas, redondeados a 2 decimales.
func Totals(items []LineItem) (subtotal, tax, total decimal.Decimal) {
	subtotal, tax = decimal.Zero, decimal.Zero
	for _, it := range items {
		s := it.Subtotal()
		subtotal = subtotal.Add(s)
		tax = tax.Add(s.Mul(it.TaxRate).Div(hundred))
	}
	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	return subtotal, tax, subtotal.Add(tax)
}
