package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
)

func TestRequire(t *testing.T) {
	owner := &entity.Membership{OrgID: "o1", UserID: "u1", Role: rbac.RoleOwner, IsActive: true}
	viewer := &entity.Membership{OrgID: "o1", UserID: "u2", Role: rbac.RoleViewer, IsActive: true}
	inactive := &entity.Membership{OrgID: "o1", UserID: "u3", Role: rbac.RoleOwner}

	assert.NoError(t, access.Require(owner, rbac.ManageFinancials))
	assert.ErrorIs(t, access.Require(viewer, rbac.ManageFinancials), domain.ErrForbidden)
	assert.ErrorIs(t, access.Require(inactive, rbac.ManageOrg), domain.ErrForbidden, "una membresía inactiva no concede nada")
	assert.ErrorIs(t, access.Require(nil, rbac.ViewReports), domain.ErrForbidden)

	assert.NoError(t, access.RequireAny(owner, rbac.ManageCustomers, rbac.ManageFinancials))
	assert.ErrorIs(t, access.RequireAny(viewer, rbac.ManageFinancials, rbac.ManageOrg), domain.ErrForbidden)
}

func TestRow(t *testing.T) {
	emp := &entity.Membership{OrgID: "o1", UserID: "u1", Role: rbac.RoleEmployee, IsActive: true}
	mgr := &entity.Membership{OrgID: "o1", UserID: "u2", Role: rbac.RoleManager, IsActive: true}

	assert.NoError(t, access.Row(emp, "o1", "u1"))
	assert.NoError(t, access.Row(emp, "o1", "otro", "u1"), "basta con ser uno de los responsables")
	assert.ErrorIs(t, access.Row(emp, "o1", "otro"), domain.ErrForbidden)
	assert.ErrorIs(t, access.Row(emp, "o2", "u1"), domain.ErrForbidden, "otra organización aunque sea el dueño")
	assert.NoError(t, access.Row(mgr, "o1", "otro"))
	assert.ErrorIs(t, access.SameOrg(mgr, ""), domain.ErrForbidden)

	assert.False(t, access.OrgWide(emp))
	assert.True(t, access.OrgWide(mgr))
	assert.False(t, access.OrgWide(nil))
}

func seedResolver(t *testing.T) (*access.Resolver, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Profiles().Create(ctx, &entity.Profile{ID: "u1", Email: "ana@example.com", IsActive: true}))
	require.NoError(t, s.Organizations().Create(ctx, &entity.Organization{ID: "o1", Name: "Acme", IsActive: true}))
	require.NoError(t, s.Organizations().Create(ctx, &entity.Organization{ID: "o2", Name: "Ajena", IsActive: true}))
	require.NoError(t, s.Organizations().Create(ctx, &entity.Organization{ID: "o3", Name: "Cerrada"}))
	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m1", OrgID: "o1", UserID: "u1", Role: rbac.RoleAdmin, IsActive: true}))
	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m3", OrgID: "o3", UserID: "u1", Role: rbac.RoleOwner, IsActive: true}))
	return access.NewResolver(s.Profiles(), s.Organizations(), s.Memberships()), s
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	r, _ := seedResolver(t)

	m, org, err := r.Resolve(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Acme", org.Name)

	_, _, err = r.Resolve(ctx, "u1", "o2")
	assert.ErrorIs(t, err, domain.ErrForbidden, "organización explícita sin membresía")

	_, _, err = r.Resolve(ctx, "u1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = r.Resolve(ctx, "u1", "o3")
	assert.ErrorIs(t, err, domain.ErrForbidden, "organización desactivada")
}

func TestResolver_SinOrganizacionExplicita(t *testing.T) {
	ctx := context.Background()
	r, s := seedResolver(t)

	// sin organización por defecto: primera organización activa
	m, _, err := r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "o1", m.OrgID)

	// la organización por defecto se respeta mientras sea usable
	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m2", OrgID: "o2", UserID: "u1", Role: rbac.RoleViewer, IsActive: true}))
	require.NoError(t, s.Profiles().SetDefaultOrg(ctx, "u1", "o2"))
	m, _, err = r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "o2", m.OrgID)

	_, _, err = r.Resolve(ctx, "desconocido", "")
	assert.ErrorIs(t, err, domain.ErrSetupRequired)
}

func TestResolver_DefaultSinMembresiaActivaUsaOtraOrganizacion(t *testing.T) {
	ctx := context.Background()
	r, s := seedResolver(t)

	// despedido en o2, que seguía siendo su organización por defecto
	require.NoError(t, s.Memberships().Create(ctx, &entity.Membership{ID: "m2", OrgID: "o2", UserID: "u1", Role: rbac.RoleEmployee}))
	require.NoError(t, s.Profiles().SetDefaultOrg(ctx, "u1", "o2"))
	m, _, err := r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "o1", m.OrgID)

	// organización por defecto desactivada
	require.NoError(t, s.Profiles().SetDefaultOrg(ctx, "u1", "o3"))
	m, _, err = r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "o1", m.OrgID)

	// sin ninguna membresía activa sí va al onboarding
	m1, err := s.Memberships().GetByOrgAndUser(ctx, "o1", "u1")
	require.NoError(t, err)
	m1.IsActive = false
	require.NoError(t, s.Memberships().Update(ctx, m1))
	_, _, err = r.Resolve(ctx, "u1", "")
	assert.ErrorIs(t, err, domain.ErrSetupRequired)
}
