package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// MembershipRepository persistencia de membresías. Los Get devuelven (nil, nil) si no existe.
type MembershipRepository interface {
	Create(ctx context.Context, m *entity.Membership) error
	GetByID(ctx context.Context, id string) (*entity.Membership, error)
	GetByOrgAndUser(ctx context.Context, orgID, userID string) (*entity.Membership, error)
	ListByOrg(ctx context.Context, orgID string, includeInactive bool) ([]*entity.Membership, error)
	Update(ctx context.Context, m *entity.Membership) error
}
