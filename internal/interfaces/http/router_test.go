package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/access"
	appanalytics "github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/organization"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/crm-api/internal/interfaces/http"
)

type stubPDF struct{}

func (stubPDF) Generate(_ context.Context, doc *billing.DocumentForPDF) ([]byte, error) {
	return []byte("%PDF-1.4 " + doc.Number), nil
}

// newServer arma la API completa sobre el store en memoria.
func newServer(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()

	authUC := auth.NewAuthUseCase(store.Profiles(), auth.JWTConfig{
		Secret:               testJWTSecret,
		ExpMinutes:           testExpMin,
		Issuer:               testIssuer,
		RefreshWindowMinutes: 5,
	}, log)
	inviteUC := organization.NewInviteUseCase(store.Invites(), store.Memberships(), store.Profiles(), store, 0, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		Resolver:       access.NewResolver(store.Profiles(), store.Organizations(), store.Memberships()),
		OnboardingUC:   organization.NewOnboardingUseCase(store.Organizations(), store.Memberships(), store.Profiles(), inviteUC, organization.OnboardingConfig{}, log),
		InviteUC:       inviteUC,
		OrganizationUC: organization.NewOrganizationUseCase(store.Organizations(), log),
		MembershipUC:   organization.NewMembershipUseCase(store.Memberships(), log),
		CustomerUC:     crm.NewCustomerUseCase(store.Customers(), store.Memberships()),
		ProjectUC:      crm.NewProjectUseCase(store.Projects(), store.Customers(), store.Memberships()),
		ProductUC:      crm.NewProductUseCase(store.Products()),
		EstimateUC:     crm.NewEstimateUseCase(store.Estimates(), store.Customers(), store.Projects(), store.Products(), store, log),
		InvoiceUC:      crm.NewInvoiceUseCase(store.Invoices(), store.Customers(), store.Projects(), store.Products(), log),
		PDFUC:          billing.NewPDFUseCase(store.Estimates(), store.Invoices(), store.Organizations(), store.Customers(), stubPDF{}),
		SummaryUC:      appanalytics.NewSummaryUseCase(store.Reports()),
		AnonKey:        testAnonKey,
		ServiceRoleKey: testServiceKey,
		ServiceName:    "crm-api",
		Log:            log,
	})
	return app
}

type request struct {
	method string
	path   string
	token  string
	orgID  string
	key    string
	body   any
}

func call(t *testing.T, app *fiber.App, r request) (*http.Response, map[string]any) {
	t.Helper()
	var payload bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &payload)
	req.Header.Set("Content-Type", "application/json")
	key := r.key
	if key == "" {
		key = testAnonKey
	}
	req.Header.Set(apphttp.HeaderAPIKey, key)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.orgID != "" {
		req.Header.Set(apphttp.HeaderOrgID, r.orgID)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func signUp(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, body := call(t, app, request{method: http.MethodPost, path: "/api/auth/signup", body: map[string]string{
		"email": email, "password": "secreto-123", "full_name": email,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["access_token"].(string)
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := newServer(t).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health no exige apikey")
}

func TestHealth_BaseDeDatosCaida(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName: "crm-api",
		Log:         zerolog.Nop(),
		Ping:        func(context.Context) error { return assert.AnError },
	})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_SinAPIKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	resp, err := newServer(t).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_OnboardingInvitacionYCRM(t *testing.T) {
	app := newServer(t)
	owner := signUp(t, app, "owner@example.com")

	// sin organización: el cliente debe ir al onboarding
	resp, body := call(t, app, request{method: http.MethodGet, path: "/api/me/permissions", token: owner})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SETUP_REQUIRED", body["code"])

	// paso 1
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/onboarding/organization", token: owner,
		body: map[string]string{"name": "Acme"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orgID := body["organization"].(map[string]any)["id"].(string)
	assert.Equal(t, true, body["default_org_set"])

	resp, body = call(t, app, request{method: http.MethodGet, path: "/api/me/permissions", token: owner})
	require.Equal(t, http.StatusOK, resp.StatusCode, "usa la organización por defecto")
	assert.Equal(t, "owner", body["role"])
	assert.Equal(t, orgID, body["org_id"])

	// paso 2: la fila vacía se descarta
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/onboarding/invites", token: owner, orgID: orgID,
		body: map[string]any{"invites": []map[string]string{
			{"email": "bob@example.com", "role": "employee"},
			{"email": "  "},
		}}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["created"].([]any)
	require.Len(t, created, 1)
	assert.EqualValues(t, 1, body["skipped"])
	inviteID := created[0].(map[string]any)["id"].(string)

	// paso 3
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/onboarding/complete", token: owner, orgID: orgID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["pending_invites"])

	// bob acepta
	bob := signUp(t, app, "bob@example.com")
	resp, _ = call(t, app, request{method: http.MethodPost, path: "/api/invites/accept", token: bob,
		body: map[string]string{"invite_id": inviteID}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/invites/accept", token: bob,
		body: map[string]string{"invite_id": inviteID}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVITE_USED", body["code"])

	// clientes: bob solo ve los suyos
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/customers", token: bob, body: map[string]string{"name": "Cliente de Bob"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bobCustomer := body["id"].(string)

	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/customers", token: owner, body: map[string]string{"name": "Cliente del dueño"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ownerCustomer := body["id"].(string)

	resp, _ = call(t, app, request{method: http.MethodGet, path: "/api/customers/" + ownerCustomer, token: bob})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, request{method: http.MethodGet, path: "/api/customers", token: bob})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["page"].(map[string]any)["total"])

	resp, body = call(t, app, request{method: http.MethodGet, path: "/api/customers?search=bob", token: owner})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["page"].(map[string]any)["total"])

	// facturas: employee sin manageFinancials
	invoice := map[string]any{
		"customer_id": bobCustomer,
		"items":       []map[string]any{{"description": "Consultoría", "quantity": "2", "unit_price": "100", "tax_rate": "19"}},
	}
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/invoices", token: bob, body: invoice})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/invoices", token: owner, body: invoice})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "FAC-00001", body["number"])
	assert.Equal(t, "238", body["total"])
	invoiceID := body["id"].(string)

	resp, _ = call(t, app, request{method: http.MethodGet, path: "/api/invoices/" + invoiceID + "/pdf", token: owner})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "factura_FAC-00001.pdf")

	// pagar un borrador es un conflicto
	resp, body = call(t, app, request{method: http.MethodPost, path: "/api/invoices/" + invoiceID + "/pay", token: owner})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["code"])

	// bob no puede administrar el equipo
	resp, _ = call(t, app, request{method: http.MethodGet, path: "/api/invites", token: bob, orgID: orgID})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = call(t, app, request{method: http.MethodGet, path: "/api/staff", token: owner})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// reportes
	resp, _ = call(t, app, request{method: http.MethodGet, path: "/api/reports/summary", token: owner})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = call(t, app, request{method: http.MethodGet, path: "/api/reports/summary", token: bob})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_OrganizacionAjena(t *testing.T) {
	app := newServer(t)
	ana := signUp(t, app, "ana@example.com")
	eve := signUp(t, app, "eve@example.com")

	resp, body := call(t, app, request{method: http.MethodPost, path: "/api/onboarding/organization", token: ana, body: map[string]string{"name": "Ana SAS"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	anaOrg := body["organization"].(map[string]any)["id"].(string)

	resp, _ = call(t, app, request{method: http.MethodPost, path: "/api/onboarding/organization", token: eve, body: map[string]string{"name": "Eve Ltda"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = call(t, app, request{method: http.MethodGet, path: "/api/customers", token: eve, orgID: anaOrg})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	resp, body = call(t, app, request{method: http.MethodGet, path: "/api/me/organizations", token: eve})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Admin(t *testing.T) {
	app := newServer(t)
	tok := signUp(t, app, "ana@example.com")
	resp, _ := call(t, app, request{method: http.MethodPost, path: "/api/onboarding/organization", token: tok, body: map[string]string{"name": "Ana SAS"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = call(t, app, request{method: http.MethodGet, path: "/api/admin/organizations"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "la llave anon no alcanza")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/organizations?limit=5", nil)
	req.Header.Set(apphttp.HeaderAPIKey, testServiceKey)
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, r.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&list))
	assert.Len(t, list, 1)
}
