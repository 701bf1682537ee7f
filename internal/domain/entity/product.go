package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product artículo o servicio del catálogo de la organización. SKU único por organización.
type Product struct {
	ID          string
	OrgID       string
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	TaxRate     decimal.Decimal // porcentaje: 0, 5, 19...
	Unit        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
