package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice (líneas incluidas).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListByOrg(ctx context.Context, orgID string) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	// NextNumber devuelve el siguiente consecutivo de la organización con el prefijo dado.
	NextNumber(ctx context.Context, orgID, prefix string) (string, error)
}
