// Package access aplica la tabla de permisos, el aislamiento por organización y el
// alcance por fila sobre la membresía del llamador. La membresía llega resuelta desde
// la petición (ver Resolver); ningún caso de uso la lee de un estado global.
package access

import (
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
)

// Require falla con ErrForbidden si la membresía no está activa o no tiene la capacidad.
func Require(m *entity.Membership, c rbac.Capability) error {
	if !m.Can(c) {
		return fmt.Errorf("%w: se requiere %s", domain.ErrForbidden, c)
	}
	return nil
}

// RequireAny exige al menos una de las capacidades.
func RequireAny(m *entity.Membership, caps ...rbac.Capability) error {
	for _, c := range caps {
		if m.Can(c) {
			return nil
		}
	}
	return fmt.Errorf("%w: se requiere alguno de %v", domain.ErrForbidden, caps)
}

// SameOrg rechaza filas de otra organización, sin importar el dueño.
func SameOrg(m *entity.Membership, orgID string) error {
	if m == nil || !m.IsActive || orgID == "" || m.OrgID != orgID {
		return domain.ErrForbidden
	}
	return nil
}

// Row verifica organización y luego alcance por fila (dueño o asignado para employee).
func Row(m *entity.Membership, orgID string, ownerIDs ...string) error {
	if err := SameOrg(m, orgID); err != nil {
		return err
	}
	if !rbac.CanAccessRow(m.Role, m.UserID, ownerIDs...) {
		return domain.ErrForbidden
	}
	return nil
}

// OrgWide informa si el llamador ve todas las filas de su organización.
func OrgWide(m *entity.Membership) bool {
	return m != nil && rbac.IsOrgWide(m.Role)
}
