package entity

import (
	"time"

	"github.com/jhoicas/crm-api/internal/domain/rbac"
)

// DefaultInviteTTL vigencia de una invitación si la configuración no indica otra.
const DefaultInviteTTL = 7 * 24 * time.Hour

// Invite oferta pendiente para que un email se una a una organización con un rol.
// Se consume una sola vez (AcceptedAt) o expira.
type Invite struct {
	ID         string
	OrgID      string
	Email      string
	Name       string
	Role       rbac.Role
	InvitedBy  string
	AcceptedAt *time.Time
	AcceptedBy string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// IsExpired informa si la invitación venció en now.
func (i *Invite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsPending: ni aceptada ni vencida.
func (i *Invite) IsPending(now time.Time) bool {
	return i.AcceptedAt == nil && !i.IsExpired(now)
}
