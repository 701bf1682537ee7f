package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/crm-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/crm-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret  = "test-secret-key-for-unit-tests"
	testUserID     = "00000000-0000-0000-0000-000000000001"
	testOrgID      = "00000000-0000-0000-0000-000000000002"
	testEmail      = "ana@example.com"
	testIssuer     = "crm-api-test"
	testExpMin     = 60
	testAnonKey    = "anon-key"
	testServiceKey = "service-key"
)

func newAuthUC() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewStore().Profiles(), auth.JWTConfig{
		Secret:               testJWTSecret,
		ExpMinutes:           testExpMin,
		Issuer:               testIssuer,
		RefreshWindowMinutes: 5,
	}, zerolog.Nop())
}

func bearer(t *testing.T, expMin int) string {
	t.Helper()
	tok, _, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, testIssuer, expMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func do(t *testing.T, app *fiber.App, method, path string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// fakeResolver devuelve una membresía fija o un error, y recuerda la organización pedida.
type fakeResolver struct {
	m         *entity.Membership
	err       error
	requested string
}

func (r *fakeResolver) Resolve(_ context.Context, userID, orgID string) (*entity.Membership, *entity.Organization, error) {
	r.requested = orgID
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.m, &entity.Organization{ID: r.m.OrgID, IsActive: true}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func buildAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(newAuthUC()), func(c *fiber.Ctx) error {
		s := apphttp.GetSession(c)
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "email": s.Email})
	})
	return app
}

func TestAuthMiddleware_ExtraeSesion(t *testing.T) {
	resp := do(t, buildAuthApp(), http.MethodGet, "/me", map[string]string{"Authorization": bearer(t, testExpMin)})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testEmail, body["email"])
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "UNAUTHORIZED"},
		{"sin Bearer", "Token abc", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			resp := do(t, buildAuthApp(), http.MethodGet, "/me", headers)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Contains(t, bodyString(t, resp), tc.code)
		})
	}
}

func TestAuthMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	resp := do(t, buildAuthApp(), http.MethodGet, "/me", map[string]string{"Authorization": bearer(t, -1)})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// APIKey / RequireServiceRole
// ──────────────────────────────────────────────────────────────────────────────

func buildKeyApp() *fiber.App {
	app := fiber.New()
	api := app.Group("/api", apphttp.APIKey(testAnonKey, testServiceKey))
	api.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	api.Get("/admin/ping", apphttp.RequireServiceRole(), func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func TestAPIKey(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		key    string
		status int
	}{
		{"anon en ruta normal", "/api/ping", testAnonKey, http.StatusOK},
		{"servicio en ruta normal", "/api/ping", testServiceKey, http.StatusOK},
		{"sin llave", "/api/ping", "", http.StatusUnauthorized},
		{"llave desconocida", "/api/ping", "otra", http.StatusUnauthorized},
		{"anon en admin", "/api/admin/ping", testAnonKey, http.StatusForbidden},
		{"servicio en admin", "/api/admin/ping", testServiceKey, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.key != "" {
				headers[apphttp.HeaderAPIKey] = tc.key
			}
			resp := do(t, buildKeyApp(), http.MethodGet, tc.path, headers)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAPIKey_SinLlaveDeServicioConfigurada(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", apphttp.APIKey(testAnonKey, ""), apphttp.RequireServiceRole(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	resp := do(t, app, http.MethodGet, "/admin", map[string]string{apphttp.HeaderAPIKey: ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "una llave vacía nunca coincide con la de servicio vacía")
}

// ──────────────────────────────────────────────────────────────────────────────
// OrgContext
// ──────────────────────────────────────────────────────────────────────────────

func buildOrgApp(r *fakeResolver) *fiber.App {
	app := fiber.New()
	app.Get("/org", apphttp.AuthMiddleware(newAuthUC()), apphttp.OrgContext(r, zerolog.Nop()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"org_id": apphttp.GetMembership(c).OrgID,
			"role":   apphttp.GetRole(c),
		})
	})
	return app
}

func TestOrgContext_ResuelveMembresia(t *testing.T) {
	r := &fakeResolver{m: &entity.Membership{OrgID: testOrgID, UserID: testUserID, Role: rbac.RoleManager, IsActive: true}}
	resp := do(t, buildOrgApp(r), http.MethodGet, "/org", map[string]string{
		"Authorization":     bearer(t, testExpMin),
		apphttp.HeaderOrgID: " " + testOrgID + " ",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testOrgID, body["org_id"])
	assert.Equal(t, "manager", body["role"])
	assert.Equal(t, testOrgID, r.requested, "el header se recorta")
}

func TestOrgContext_Errores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrSetupRequired, http.StatusNotFound, "SETUP_REQUIRED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			resp := do(t, buildOrgApp(&fakeResolver{err: tc.err}), http.MethodGet, "/org", map[string]string{
				"Authorization": bearer(t, testExpMin),
			})
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			body := bodyString(t, resp)
			assert.Contains(t, body, tc.code)
			if tc.code == "INTERNAL" {
				assert.NotContains(t, body, assert.AnError.Error(), "no se filtra el detalle interno")
			}
		})
	}
}
