package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memory.Store
	customers *CustomerUseCase
	projects  *ProjectUseCase
	products  *ProductUseCase
	estimates *EstimateUseCase
	invoices  *InvoiceUseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	log := zerolog.Nop()
	return &fixture{
		store:     s,
		customers: NewCustomerUseCase(s.Customers(), s.Memberships()),
		projects:  NewProjectUseCase(s.Projects(), s.Customers(), s.Memberships()),
		products:  NewProductUseCase(s.Products()),
		estimates: NewEstimateUseCase(s.Estimates(), s.Customers(), s.Projects(), s.Products(), s, log),
		invoices:  NewInvoiceUseCase(s.Invoices(), s.Customers(), s.Projects(), s.Products(), log),
	}
}

func (f *fixture) member(t *testing.T, orgID, userID string, role rbac.Role) *entity.Membership {
	t.Helper()
	m := &entity.Membership{
		ID: "m-" + orgID + "-" + userID, OrgID: orgID, UserID: userID, Role: role,
		IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, f.store.Memberships().Create(context.Background(), m))
	return m
}

func (f *fixture) customer(t *testing.T, actor *entity.Membership, name string) *dto.CustomerResponse {
	t.Helper()
	c, err := f.customers.Create(context.Background(), actor, dto.CustomerRequest{Name: name})
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func oneLine(price string) []dto.LineItemDTO {
	return []dto.LineItemDTO{{Description: "Consultoría", Quantity: dec("2"), UnitPrice: ptrDec(price), TaxRate: ptrDec("19")}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomer_CreateAsignaDuenoYEstadoLead(t *testing.T) {
	f := newFixture()
	emp := f.member(t, "org-a", "emp-1", rbac.RoleEmployee)

	c := f.customer(t, emp, "  Acme SAS ")
	assert.Equal(t, "Acme SAS", c.Name)
	assert.Equal(t, "emp-1", c.OwnerID)
	assert.Equal(t, entity.CustomerStatusLead, c.Status)
	assert.Equal(t, "org-a", c.OrgID)
}

func TestCustomer_ManagerDeOtraOrganizacionNoPuedeEditar(t *testing.T) {
	f := newFixture()
	ownerA := f.member(t, "org-a", "owner-a", rbac.RoleOwner)
	managerB := f.member(t, "org-b", "manager-b", rbac.RoleManager)
	c := f.customer(t, ownerA, "Cliente A")

	_, err := f.customers.Update(context.Background(), managerB, c.ID, dto.CustomerRequest{Name: "hackeado"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	got, err := f.customers.Get(context.Background(), ownerA, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cliente A", got.Name)
	assert.Equal(t, 0, f.store.Calls("customers.Update"))
}

func TestCustomer_EmployeeSoloVeLosSuyos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.member(t, "org-a", "admin-1", rbac.RoleAdmin)
	emp := f.member(t, "org-a", "emp-1", rbac.RoleEmployee)
	other := f.customer(t, admin, "Del admin")
	mine := f.customer(t, emp, "Del empleado")

	list, err := f.customers.List(ctx, emp, dto.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, mine.ID, list.Items[0].ID)
	assert.Equal(t, 1, list.Page.Total)

	_, err = f.customers.Get(ctx, emp, other.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.True(t, errors.Is(f.customers.Delete(ctx, emp, other.ID), domain.ErrForbidden))

	all, err := f.customers.List(ctx, admin, dto.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}

func TestCustomer_EmployeeNoAsignaAOtros(t *testing.T) {
	f := newFixture()
	f.member(t, "org-a", "emp-2", rbac.RoleEmployee)
	emp := f.member(t, "org-a", "emp-1", rbac.RoleEmployee)

	_, err := f.customers.Create(context.Background(), emp, dto.CustomerRequest{Name: "X", OwnerID: "emp-2"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCustomer_ManagerAsignaSoloMiembrosActivos(t *testing.T) {
	f := newFixture()
	mgr := f.member(t, "org-a", "mgr-1", rbac.RoleManager)
	f.member(t, "org-a", "emp-1", rbac.RoleEmployee)
	f.member(t, "org-b", "extraño", rbac.RoleEmployee)

	c, err := f.customers.Create(context.Background(), mgr, dto.CustomerRequest{Name: "X", OwnerID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", c.OwnerID)

	_, err = f.customers.Create(context.Background(), mgr, dto.CustomerRequest{Name: "Y", OwnerID: "extraño"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCustomer_ViewerSinPermiso(t *testing.T) {
	f := newFixture()
	viewer := f.member(t, "org-a", "viewer-1", rbac.RoleViewer)

	_, err := f.customers.List(context.Background(), viewer, dto.ListFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, 0, f.store.Calls("customers.ListByOrg"))
}

func TestCustomer_ValidacionesYBusqueda(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.member(t, "org-a", "owner-1", rbac.RoleOwner)

	_, err := f.customers.Create(ctx, owner, dto.CustomerRequest{Name: "  "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = f.customers.Create(ctx, owner, dto.CustomerRequest{Name: "X", Status: "vip"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.customers.Create(ctx, owner, dto.CustomerRequest{Name: "José Núñez", CompanyName: "Ferretería"})
	require.NoError(t, err)
	f.customer(t, owner, "Otra")

	list, err := f.customers.List(ctx, owner, dto.ListFilter{Search: "nunez"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "José Núñez", list.Items[0].Name)

	_, err = f.customers.Get(ctx, owner, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Proyectos
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomer_DeleteConDocumentosEsConflicto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mgr := f.member(t, "org-a", "mgr-1", rbac.RoleManager)

	conCotizacion := f.customer(t, mgr, "Acme")
	_, err := f.estimates.Create(ctx, mgr, dto.EstimateRequest{CustomerID: conCotizacion.ID, Items: oneLine("10")})
	require.NoError(t, err)
	assert.True(t, errors.Is(f.customers.Delete(ctx, mgr, conCotizacion.ID), domain.ErrConflict))

	conFactura := f.customer(t, mgr, "Globex")
	_, err = f.invoices.Create(ctx, mgr, dto.InvoiceRequest{CustomerID: conFactura.ID, Items: oneLine("10")})
	require.NoError(t, err)
	assert.True(t, errors.Is(f.customers.Delete(ctx, mgr, conFactura.ID), domain.ErrConflict))

	_, err = f.customers.Get(ctx, mgr, conFactura.ID)
	assert.NoError(t, err, "el cliente sigue existiendo")

	// con solo proyectos se borra y el proyecto queda sin cliente
	soloProyecto := f.customer(t, mgr, "Initech")
	p, err := f.projects.Create(ctx, mgr, dto.ProjectRequest{Name: "Portal", CustomerID: soloProyecto.ID})
	require.NoError(t, err)
	require.NoError(t, f.customers.Delete(ctx, mgr, soloProyecto.ID))
	p, err = f.projects.Get(ctx, mgr, p.ID)
	require.NoError(t, err)
	assert.Empty(t, p.CustomerID)
}

func TestProject_EmployeeAsignadoLoVe(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mgr := f.member(t, "org-a", "mgr-1", rbac.RoleManager)
	emp := f.member(t, "org-a", "emp-1", rbac.RoleEmployee)
	outsider := f.member(t, "org-a", "emp-2", rbac.RoleEmployee)

	p, err := f.projects.Create(ctx, mgr, dto.ProjectRequest{Name: "Migración", AssignedTo: "emp-1", Budget: ptrDec("1500.456")})
	require.NoError(t, err)
	assert.Equal(t, "1500.46", p.Budget.String())
	assert.Equal(t, entity.ProjectStatusPlanned, p.Status)

	_, err = f.projects.Get(ctx, emp, p.ID)
	assert.NoError(t, err)
	_, err = f.projects.Get(ctx, outsider, p.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	list, err := f.projects.List(ctx, outsider, dto.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestProject_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.member(t, "org-a", "owner-1", rbac.RoleOwner)
	ownerB := f.member(t, "org-b", "owner-b", rbac.RoleOwner)
	foreign := f.customer(t, ownerB, "De B")

	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	cases := []dto.ProjectRequest{
		{Name: ""},
		{Name: "X", Status: "cerrado"},
		{Name: "X", StartDate: &start, EndDate: &end},
		{Name: "X", Budget: ptrDec("-1")},
		{Name: "X", CustomerID: foreign.ID},
		{Name: "X", AssignedTo: "nadie"},
	}
	for _, in := range cases {
		_, err := f.projects.Create(ctx, owner, in)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "entrada %+v", in)
	}
	assert.Equal(t, 0, f.store.Calls("projects.Create"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_SKUUnicoPorOrganizacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.member(t, "org-a", "admin-1", rbac.RoleAdmin)
	adminB := f.member(t, "org-b", "admin-b", rbac.RoleAdmin)
	in := dto.CreateProductRequest{SKU: "srv-01", Name: "Soporte", Price: dec("100"), TaxRate: dec("19")}

	p, err := f.products.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "SRV-01", p.SKU)
	assert.Equal(t, defaultUnit, p.Unit)

	_, err = f.products.Create(ctx, admin, in)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = f.products.Create(ctx, adminB, in)
	assert.NoError(t, err)
}

func TestProduct_PermisosLecturaYEscritura(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	emp := f.member(t, "org-a", "emp-1", rbac.RoleEmployee)
	viewer := f.member(t, "org-a", "viewer-1", rbac.RoleViewer)

	_, err := f.products.List(ctx, emp, dto.ListFilter{})
	assert.NoError(t, err)
	_, err = f.products.List(ctx, viewer, dto.ListFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.products.Create(ctx, emp, dto.CreateProductRequest{SKU: "A", Name: "A"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestProduct_PrecioEImpuestoValidos(t *testing.T) {
	f := newFixture()
	admin := f.member(t, "org-a", "admin-1", rbac.RoleAdmin)

	_, err := f.products.Create(context.Background(), admin, dto.CreateProductRequest{SKU: "A", Name: "A", Price: dec("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = f.products.Create(context.Background(), admin, dto.CreateProductRequest{SKU: "A", Name: "A", Price: dec("1"), TaxRate: dec("101")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cotizaciones y facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestEstimate_TotalesYConsecutivo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mgr := f.member(t, "org-a", "mgr-1", rbac.RoleManager)
	c := f.customer(t, mgr, "Acme")

	e1, err := f.estimates.Create(ctx, mgr, dto.EstimateRequest{CustomerID: c.ID, Items: oneLine("50000")})
	require.NoError(t, err)
	assert.Equal(t, "COT-00001", e1.Number)
	assert.True(t, dec("100000").Equal(e1.Subtotal))
	assert.True(t, dec("19000").Equal(e1.TaxTotal))
	assert.True(t, dec("119000").Equal(e1.Total))
	assert.Equal(t, entity.EstimateStatusDraft, e1.Status)

	e2, err := f.estimates.Create(ctx, mgr, dto.EstimateRequest{CustomerID: c.ID, Items: oneLine("1")})
	require.NoError(t, err)
	assert.Equal(t, "COT-00002", e2.Number)
}

func TestEstimate_LineaConProductoTomaPrecioDelCatalogo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.member(t, "org-a", "admin-1", rbac.RoleAdmin)
	c := f.customer(t, admin, "Acme")
	p, err := f.products.Create(ctx, admin, dto.CreateProductRequest{SKU: "HR", Name: "Hora", Price: dec("80"), TaxRate: dec("5")})
	require.NoError(t, err)

	e, err := f.estimates.Create(ctx, admin, dto.EstimateRequest{
		CustomerID: c.ID,
		Items:      []dto.LineItemDTO{{ProductID: p.ID, Quantity: dec("10")}},
	})
	require.NoError(t, err)
	require.Len(t, e.Items, 1)
	assert.Equal(t, "Hora", e.Items[0].Description)
	assert.True(t, dec("840").Equal(e.Total))
}

func TestEstimate_EmployeeSinFinanzas(t *testing.T) {
	f := newFixture()
	emp := f.member(t, "org-a", "emp-1", rbac.RoleEmployee)

	_, err := f.estimates.List(context.Background(), emp, dto.ListFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestEstimate_ClienteDeOtraOrganizacion(t *testing.T) {
	f := newFixture()
	ownerA := f.member(t, "org-a", "owner-a", rbac.RoleOwner)
	ownerB := f.member(t, "org-b", "owner-b", rbac.RoleOwner)
	c := f.customer(t, ownerB, "De B")

	_, err := f.estimates.Create(context.Background(), ownerA, dto.EstimateRequest{CustomerID: c.ID, Items: oneLine("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestEstimate_ConvertirCreaFacturaUnaSolaVez(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mgr := f.member(t, "org-a", "mgr-1", rbac.RoleManager)
	c := f.customer(t, mgr, "Acme")
	e, err := f.estimates.Create(ctx, mgr, dto.EstimateRequest{CustomerID: c.ID, Items: oneLine("100")})
	require.NoError(t, err)

	_, err = f.estimates.Convert(ctx, mgr, e.ID, dto.ConvertEstimateRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict), "borrador no se factura")

	_, err = f.estimates.Update(ctx, mgr, e.ID, dto.EstimateRequest{CustomerID: c.ID, Status: entity.EstimateStatusAccepted, Items: oneLine("100")})
	require.NoError(t, err)

	inv, err := f.estimates.Convert(ctx, mgr, e.ID, dto.ConvertEstimateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "FAC-00001", inv.Number)
	assert.Equal(t, e.ID, inv.EstimateID)
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.True(t, e.Total.Equal(inv.Total))

	got, err := f.estimates.Get(ctx, mgr, e.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.InvoiceID)

	_, err = f.estimates.Convert(ctx, mgr, e.ID, dto.ConvertEstimateRequest{})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.True(t, errors.Is(f.estimates.Delete(ctx, mgr, e.ID), domain.ErrConflict))
	assert.Equal(t, 1, f.store.Calls("invoices.Create"))
}

func TestEstimate_ConvertirConVencimientoPasado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mgr := f.member(t, "org-a", "mgr-1", rbac.RoleManager)
	c := f.customer(t, mgr, "Acme")
	e, err := f.estimates.Create(ctx, mgr, dto.EstimateRequest{CustomerID: c.ID, Status: entity.EstimateStatusAccepted, Items: oneLine("1")})
	require.NoError(t, err)

	past := time.Now().AddDate(0, 0, -3)
	_, err = f.estimates.Convert(ctx, mgr, e.ID, dto.ConvertEstimateRequest{DueDate: &past})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 0, f.store.Calls("invoices.Create"))
}

func TestInvoice_CicloPagoYVencida(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.member(t, "org-a", "admin-1", rbac.RoleAdmin)
	c := f.customer(t, admin, "Acme")

	issue := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.invoices.now = func() time.Time { return issue }
	inv, err := f.invoices.Create(ctx, admin, dto.InvoiceRequest{CustomerID: c.ID, Items: oneLine("10")})
	require.NoError(t, err)
	assert.Equal(t, "FAC-00001", inv.Number)
	assert.Equal(t, issue.AddDate(0, 0, defaultDueDays), inv.DueDate)

	_, err = f.invoices.Pay(ctx, admin, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict), "un borrador no se paga")

	_, err = f.invoices.Update(ctx, admin, inv.ID, dto.InvoiceRequest{CustomerID: c.ID, Status: entity.InvoiceStatusSent, Items: oneLine("10")})
	require.NoError(t, err)

	// Un día después del vencimiento la factura aparece como vencida.
	f.invoices.now = func() time.Time { return issue.AddDate(0, 0, defaultDueDays+1) }
	got, err := f.invoices.Get(ctx, admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusOverdue, got.Status)

	overdue, err := f.invoices.List(ctx, admin, dto.ListFilter{Status: entity.InvoiceStatusOverdue})
	require.NoError(t, err)
	assert.Len(t, overdue.Items, 1)

	paid, err := f.invoices.Pay(ctx, admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = f.invoices.Update(ctx, admin, inv.ID, dto.InvoiceRequest{CustomerID: c.ID, Items: oneLine("1")})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.True(t, errors.Is(f.invoices.Delete(ctx, admin, inv.ID), domain.ErrConflict))
}

func TestInvoice_EstadoPagadoSoloConPay(t *testing.T) {
	f := newFixture()
	admin := f.member(t, "org-a", "admin-1", rbac.RoleAdmin)
	c := f.customer(t, admin, "Acme")

	_, err := f.invoices.Create(context.Background(), admin, dto.InvoiceRequest{CustomerID: c.ID, Status: entity.InvoiceStatusPaid, Items: oneLine("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestInvoice_OtraOrganizacionNoLaVe(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerA := f.member(t, "org-a", "owner-a", rbac.RoleOwner)
	ownerB := f.member(t, "org-b", "owner-b", rbac.RoleOwner)
	c := f.customer(t, ownerA, "Acme")
	inv, err := f.invoices.Create(ctx, ownerA, dto.InvoiceRequest{CustomerID: c.ID, Items: oneLine("1")})
	require.NoError(t, err)

	_, err = f.invoices.Get(ctx, ownerB, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	list, err := f.invoices.List(ctx, ownerB, dto.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	require.NoError(t, f.invoices.Delete(ctx, ownerA, inv.ID))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, page := paginate(items, dto.PageRequest{Limit: 2, Offset: 3})
	assert.Equal(t, []int{4, 5}, got)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 3, Total: 5}, page)

	got, page = paginate(items, dto.PageRequest{Offset: 10})
	assert.Empty(t, got)
	assert.Equal(t, 20, page.Limit)
}
