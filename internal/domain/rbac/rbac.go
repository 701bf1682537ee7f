// Package rbac contiene la tabla estática de permisos por rol y la verificación
// de acceso a nivel de fila. No hace I/O: todo es búsqueda en datos fijos.
package rbac

import (
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain"
)

// Role es uno de los cinco roles fijos de una membresía.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleViewer   Role = "viewer"
)

// Capability es un permiso con nombre.
type Capability string

const (
	ManageOrg        Capability = "manageOrg"
	ManageEmployees  Capability = "manageEmployees"
	ManageCustomers  Capability = "manageCustomers"
	ManageProjects   Capability = "manageProjects"
	ManageFinancials Capability = "manageFinancials"
	ViewReports      Capability = "viewReports"
	ManageSettings   Capability = "manageSettings"
)

// AllRoles en orden de mayor a menor privilegio.
var AllRoles = []Role{RoleOwner, RoleAdmin, RoleManager, RoleEmployee, RoleViewer}

// AllCapabilities en el orden en que se exponen al cliente.
var AllCapabilities = []Capability{
	ManageOrg, ManageEmployees, ManageCustomers, ManageProjects,
	ManageFinancials, ViewReports, ManageSettings,
}

// permissions es la tabla completa rol × capacidad. Cada rol lista las siete
// capacidades para que la búsqueda sea total.
var permissions = map[Role]map[Capability]bool{
	RoleOwner: {
		ManageOrg: true, ManageEmployees: true, ManageCustomers: true, ManageProjects: true,
		ManageFinancials: true, ViewReports: true, ManageSettings: true,
	},
	RoleAdmin: {
		ManageOrg: false, ManageEmployees: true, ManageCustomers: true, ManageProjects: true,
		ManageFinancials: true, ViewReports: true, ManageSettings: true,
	},
	RoleManager: {
		ManageOrg: false, ManageEmployees: false, ManageCustomers: true, ManageProjects: true,
		ManageFinancials: true, ViewReports: true, ManageSettings: false,
	},
	// employee: clientes y proyectos, pero solo las filas propias o asignadas (ver CanAccessRow).
	RoleEmployee: {
		ManageOrg: false, ManageEmployees: false, ManageCustomers: true, ManageProjects: true,
		ManageFinancials: false, ViewReports: false, ManageSettings: false,
	},
	RoleViewer: {
		ManageOrg: false, ManageEmployees: false, ManageCustomers: false, ManageProjects: false,
		ManageFinancials: false, ViewReports: true, ManageSettings: false,
	},
}

// HasPermission informa si el rol tiene la capacidad.
// Un rol o capacidad desconocidos son un error de programación: hace panic.
func HasPermission(role Role, capability Capability) bool {
	caps, ok := permissions[role]
	if !ok {
		panic(fmt.Sprintf("rbac: rol desconocido %q", role))
	}
	granted, ok := caps[capability]
	if !ok {
		panic(fmt.Sprintf("rbac: capacidad desconocida %q", capability))
	}
	return granted
}

// Capabilities devuelve las capacidades concedidas al rol, en orden estable.
func Capabilities(role Role) []Capability {
	out := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if HasPermission(role, c) {
			out = append(out, c)
		}
	}
	return out
}

// ParseRole valida un rol que viene del usuario o de la BD.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := permissions[r]; !ok {
		return "", fmt.Errorf("rol %q: %w", s, domain.ErrInvalidInput)
	}
	return r, nil
}

// ParseCapability valida una capacidad que viene de fuera del código.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	for _, known := range AllCapabilities {
		if known == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("capacidad %q: %w", s, domain.ErrInvalidInput)
}

// IsOrgWide indica si el rol actúa sobre todas las filas de su organización.
func IsOrgWide(role Role) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleManager
}

// CanAccessRow decide si userID, con el rol dado, puede actuar sobre una fila cuyo
// owner_id o assigned_to se pasa en ownerIDs. Los roles de organización acceden siempre;
// employee solo si alguno de ownerIDs coincide con userID; el resto nunca.
func CanAccessRow(role Role, userID string, ownerIDs ...string) bool {
	if IsOrgWide(role) {
		return true
	}
	if role != RoleEmployee || userID == "" {
		return false
	}
	for _, id := range ownerIDs {
		if id != "" && id == userID {
			return true
		}
	}
	return false
}

// CanAccessCustomer aplica CanAccessRow a un cliente.
func CanAccessCustomer(role Role, ownerID, userID string) bool {
	return CanAccessRow(role, userID, ownerID)
}

// CanAccessProject aplica CanAccessRow a un proyecto (dueño o asignado).
func CanAccessProject(role Role, ownerID, assignedTo, userID string) bool {
	return CanAccessRow(role, userID, ownerID, assignedTo)
}

// CanManageRoles: solo owner y admin cambian roles de otros miembros.
func CanManageRoles(role Role) bool {
	return role == RoleOwner || role == RoleAdmin
}
