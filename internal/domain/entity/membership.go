package entity

import (
	"time"

	"github.com/jhoicas/crm-api/internal/domain/rbac"
)

// Membership vincula un usuario con una organización y un único rol.
// La pareja (OrgID, UserID) es única. Al despedir a un empleado la membresía se
// desactiva (no se borra).
type Membership struct {
	ID             string
	OrgID          string
	UserID         string
	Role           rbac.Role
	Department     string
	JobTitle       string
	IsActive       bool
	HiredDate      *time.Time
	TerminatedDate *time.Time
	TerminatedBy   string
	ReactivatedBy  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Can informa si la membresía activa concede la capacidad.
func (m *Membership) Can(c rbac.Capability) bool {
	return m != nil && m.IsActive && rbac.HasPermission(m.Role, c)
}
