package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// buildLines valida las líneas de un documento. Con product_id, la descripción, el
// precio y el impuesto que no vengan se toman del catálogo de la misma organización.
func buildLines(ctx context.Context, products repository.ProductRepository, orgID string, in []dto.LineItemDTO) ([]entity.LineItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: el documento necesita al menos una línea", domain.ErrInvalidInput)
	}
	out := make([]entity.LineItem, 0, len(in))
	for i, row := range in {
		n := i + 1
		if !row.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, n)
		}
		item := entity.LineItem{
			ProductID:   strings.TrimSpace(row.ProductID),
			Description: strings.TrimSpace(row.Description),
			Quantity:    row.Quantity,
			TaxRate:     decimal.Zero,
		}
		if item.ProductID != "" {
			p, err := products.GetByID(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil || p.OrgID != orgID {
				return nil, fmt.Errorf("%w: línea %d: producto no encontrado en la organización", domain.ErrInvalidInput, n)
			}
			if item.Description == "" {
				item.Description = p.Name
			}
			item.UnitPrice = p.Price
			item.TaxRate = p.TaxRate
		} else if row.UnitPrice == nil {
			return nil, fmt.Errorf("%w: línea %d: unit_price es obligatorio sin producto", domain.ErrInvalidInput, n)
		}
		if row.UnitPrice != nil {
			item.UnitPrice = *row.UnitPrice
		}
		if row.TaxRate != nil {
			item.TaxRate = *row.TaxRate
		}
		if item.Description == "" {
			return nil, fmt.Errorf("%w: línea %d: la descripción es obligatoria", domain.ErrInvalidInput, n)
		}
		if err := validatePrice(item.UnitPrice, item.TaxRate); err != nil {
			return nil, fmt.Errorf("línea %d: %w", n, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func toLineDTOs(items []entity.LineItem) []dto.LineItemDTO {
	out := make([]dto.LineItemDTO, 0, len(items))
	for _, it := range items {
		price, tax := it.UnitPrice, it.TaxRate
		out = append(out, dto.LineItemDTO{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   &price,
			TaxRate:     &tax,
			Subtotal:    it.Subtotal().Round(2),
		})
	}
	return out
}
