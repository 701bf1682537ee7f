package repository

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// InviteRepository persistencia de invitaciones.
type InviteRepository interface {
	// CreateBatch inserta todas las invitaciones en una sola sentencia.
	CreateBatch(ctx context.Context, invites []*entity.Invite) error
	GetByID(ctx context.Context, id string) (*entity.Invite, error)
	ListPendingByOrg(ctx context.Context, orgID string, now time.Time) ([]*entity.Invite, error)
	MarkAccepted(ctx context.Context, id, userID string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
