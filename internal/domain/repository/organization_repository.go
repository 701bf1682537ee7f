package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// OrganizationRepository define el puerto de persistencia para Organization (DIP).
// La implementación vive en infrastructure. GetByID devuelve (nil, nil) si no existe.
type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	Update(ctx context.Context, org *entity.Organization) error
	// ListByUser organizaciones donde el usuario tiene membresía activa.
	ListByUser(ctx context.Context, userID string) ([]*entity.Organization, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Organization, error)
}
