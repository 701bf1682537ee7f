package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// EstimateRepository define el puerto de persistencia para Estimate (líneas incluidas).
type EstimateRepository interface {
	Create(ctx context.Context, estimate *entity.Estimate) error
	GetByID(ctx context.Context, id string) (*entity.Estimate, error)
	ListByOrg(ctx context.Context, orgID string) ([]*entity.Estimate, error)
	Update(ctx context.Context, estimate *entity.Estimate) error
	Delete(ctx context.Context, id string) error
	// NextNumber devuelve el siguiente consecutivo de la organización con el prefijo dado.
	NextNumber(ctx context.Context, orgID, prefix string) (string, error)
}
