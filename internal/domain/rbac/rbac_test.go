package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
)

// expected replica la tabla de permisos fila por fila; cualquier cambio en rbac.go
// debe reflejarse aquí a propósito.
var expected = map[rbac.Role]map[rbac.Capability]bool{
	rbac.RoleOwner: {
		rbac.ManageOrg: true, rbac.ManageEmployees: true, rbac.ManageCustomers: true,
		rbac.ManageProjects: true, rbac.ManageFinancials: true, rbac.ViewReports: true,
		rbac.ManageSettings: true,
	},
	rbac.RoleAdmin: {
		rbac.ManageOrg: false, rbac.ManageEmployees: true, rbac.ManageCustomers: true,
		rbac.ManageProjects: true, rbac.ManageFinancials: true, rbac.ViewReports: true,
		rbac.ManageSettings: true,
	},
	rbac.RoleManager: {
		rbac.ManageOrg: false, rbac.ManageEmployees: false, rbac.ManageCustomers: true,
		rbac.ManageProjects: true, rbac.ManageFinancials: true, rbac.ViewReports: true,
		rbac.ManageSettings: false,
	},
	rbac.RoleEmployee: {
		rbac.ManageOrg: false, rbac.ManageEmployees: false, rbac.ManageCustomers: true,
		rbac.ManageProjects: true, rbac.ManageFinancials: false, rbac.ViewReports: false,
		rbac.ManageSettings: false,
	},
	rbac.RoleViewer: {
		rbac.ManageOrg: false, rbac.ManageEmployees: false, rbac.ManageCustomers: false,
		rbac.ManageProjects: false, rbac.ManageFinancials: false, rbac.ViewReports: true,
		rbac.ManageSettings: false,
	},
}

func TestHasPermission_TablaCompleta(t *testing.T) {
	require.Len(t, rbac.AllRoles, 5)
	require.Len(t, rbac.AllCapabilities, 7)

	for _, role := range rbac.AllRoles {
		for _, capability := range rbac.AllCapabilities {
			want := expected[role][capability]
			t.Run(string(role)+"/"+string(capability), func(t *testing.T) {
				assert.Equal(t, want, rbac.HasPermission(role, capability))
			})
		}
	}
}

func TestHasPermission_ViewerSoloReportes(t *testing.T) {
	for _, capability := range rbac.AllCapabilities {
		if capability == rbac.ViewReports {
			assert.True(t, rbac.HasPermission(rbac.RoleViewer, capability))
			continue
		}
		assert.False(t, rbac.HasPermission(rbac.RoleViewer, capability), capability)
	}
}

func TestHasPermission_DesconocidoHacePanic(t *testing.T) {
	assert.Panics(t, func() { rbac.HasPermission("superuser", rbac.ViewReports) })
	assert.Panics(t, func() { rbac.HasPermission(rbac.RoleOwner, "deleteEverything") })
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, rbac.AllCapabilities, rbac.Capabilities(rbac.RoleOwner))
	assert.Equal(t, []rbac.Capability{rbac.ViewReports}, rbac.Capabilities(rbac.RoleViewer))
	assert.NotContains(t, rbac.Capabilities(rbac.RoleAdmin), rbac.ManageOrg)
}

func TestParseRole(t *testing.T) {
	for _, role := range rbac.AllRoles {
		got, err := rbac.ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, got)
	}
	_, err := rbac.ParseRole("Owner")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = rbac.ParseRole("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseCapability(t *testing.T) {
	c, err := rbac.ParseCapability("manageFinancials")
	require.NoError(t, err)
	assert.Equal(t, rbac.ManageFinancials, c)

	_, err = rbac.ParseCapability("managefinancials")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCanAccessCustomer_RolesDeOrganizacionSiempre(t *testing.T) {
	owners := []string{"", "user-1", "user-2", "someone-else"}
	users := []string{"", "user-1", "user-3"}
	for _, role := range []rbac.Role{rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleManager} {
		for _, owner := range owners {
			for _, user := range users {
				assert.True(t, rbac.CanAccessCustomer(role, owner, user), "%s owner=%q user=%q", role, owner, user)
			}
		}
	}
}

func TestCanAccessCustomer_Employee(t *testing.T) {
	tests := []struct {
		name    string
		ownerID string
		userID  string
		want    bool
	}{
		{"dueño de la fila", "user-1", "user-1", true},
		{"otro dueño", "user-2", "user-1", false},
		{"fila sin dueño", "", "user-1", false},
		{"usuario vacío", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.CanAccessCustomer(rbac.RoleEmployee, tt.ownerID, tt.userID))
		})
	}
}

func TestCanAccessCustomer_ViewerNunca(t *testing.T) {
	assert.False(t, rbac.CanAccessCustomer(rbac.RoleViewer, "user-1", "user-1"))
}

func TestCanAccessProject_EmployeeAsignado(t *testing.T) {
	assert.True(t, rbac.CanAccessProject(rbac.RoleEmployee, "user-9", "user-1", "user-1"))
	assert.True(t, rbac.CanAccessProject(rbac.RoleEmployee, "user-1", "", "user-1"))
	assert.False(t, rbac.CanAccessProject(rbac.RoleEmployee, "user-9", "user-8", "user-1"))
}

func TestCanManageRoles(t *testing.T) {
	assert.True(t, rbac.CanManageRoles(rbac.RoleOwner))
	assert.True(t, rbac.CanManageRoles(rbac.RoleAdmin))
	assert.False(t, rbac.CanManageRoles(rbac.RoleManager))
	assert.False(t, rbac.CanManageRoles(rbac.RoleEmployee))
	assert.False(t, rbac.CanManageRoles(rbac.RoleViewer))
}
