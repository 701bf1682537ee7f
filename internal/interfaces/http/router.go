package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/access"
	appanalytics "github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/organization"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	Resolver       *access.Resolver
	OnboardingUC   *organization.OnboardingUseCase
	InviteUC       *organization.InviteUseCase
	OrganizationUC *organization.OrganizationUseCase
	MembershipUC   *organization.MembershipUseCase
	CustomerUC     *crm.CustomerUseCase
	ProjectUC      *crm.ProjectUseCase
	ProductUC      *crm.ProductUseCase
	EstimateUC     *crm.EstimateUseCase
	InvoiceUC      *crm.InvoiceUseCase
	PDFUC          *billing.PDFUseCase
	SummaryUC      *appanalytics.SummaryUseCase
	AnonKey        string
	ServiceRoleKey string
	ServiceName    string
	Log            zerolog.Logger

	// Ping comprueba la BD para /health; nil = sin chequeo.
	Ping func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Ping != nil {
			if err := deps.Ping(c.UserContext()); err != nil {
				log.Warn().Err(err).Msg("health: base de datos no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName, "db": "down"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api", APIKey(deps.AnonKey, deps.ServiceRoleKey))
	authMW := AuthMiddleware(deps.AuthUC)
	orgMW := OrgContext(deps.Resolver, log)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/signup", authHandler.SignUp)
	api.Post("/auth/signin", authHandler.SignIn)
	api.Post("/auth/refresh", authMW, authHandler.Refresh)
	api.Post("/auth/signout", authMW, authHandler.SignOut)
	api.Get("/auth/session", authMW, authHandler.Session)
	api.Get("/auth/user", authMW, authHandler.User)

	// Onboarding: el paso 1 no tiene organización todavía
	onboardingHandler := NewOnboardingHandler(deps.OnboardingUC, deps.InviteUC, log)
	api.Post("/onboarding/organization", authMW, onboardingHandler.CreateOrganization)
	api.Post("/onboarding/invites", authMW, orgMW, onboardingHandler.InviteMembers)
	api.Post("/onboarding/complete", authMW, orgMW, onboardingHandler.Complete)

	// Aceptar va antes del grupo /invites para no pasar por OrgContext
	api.Post("/invites/accept", authMW, onboardingHandler.AcceptInvite)
	invites := api.Group("/invites", authMW, orgMW)
	invites.Get("/", onboardingHandler.ListInvites)
	invites.Post("/", onboardingHandler.CreateInvites)
	invites.Delete("/:id", onboardingHandler.RevokeInvite)

	orgHandler := NewOrganizationHandler(deps.OrganizationUC, deps.MembershipUC, log)
	api.Get("/me/organizations", authMW, orgHandler.MyOrganizations)
	api.Get("/me/permissions", authMW, orgMW, orgHandler.Permissions)

	org := api.Group("/organization", authMW, orgMW)
	org.Get("/", orgHandler.Get)
	org.Patch("/", orgHandler.Rename)
	org.Patch("/plan", orgHandler.ChangePlan)
	org.Post("/deactivate", orgHandler.Deactivate)

	staff := api.Group("/staff", authMW, orgMW)
	staff.Get("/", orgHandler.ListStaff)
	staff.Patch("/:id", orgHandler.UpdateStaff)
	staff.Post("/:id/deactivate", orgHandler.DeactivateStaff)
	staff.Post("/:id/reactivate", orgHandler.ReactivateStaff)

	// CRM
	customers := api.Group("/customers", authMW, orgMW)
	customerHandler := NewCustomerHandler(deps.CustomerUC, log)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	projects := api.Group("/projects", authMW, orgMW)
	projectHandler := NewProjectHandler(deps.ProjectUC, log)
	projects.Post("/", projectHandler.Create)
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Put("/:id", projectHandler.Update)
	projects.Delete("/:id", projectHandler.Delete)

	products := api.Group("/products", authMW, orgMW)
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	estimates := api.Group("/estimates", authMW, orgMW)
	estimateHandler := NewEstimateHandler(deps.EstimateUC, deps.PDFUC, log)
	estimates.Post("/", estimateHandler.Create)
	estimates.Get("/", estimateHandler.List)
	estimates.Get("/:id", estimateHandler.GetByID)
	estimates.Put("/:id", estimateHandler.Update)
	estimates.Delete("/:id", estimateHandler.Delete)
	estimates.Post("/:id/convert", estimateHandler.Convert)
	estimates.Get("/:id/pdf", estimateHandler.PDF)

	invoices := api.Group("/invoices", authMW, orgMW)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC, log)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/pay", invoiceHandler.Pay)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)

	reports := api.Group("/reports", authMW, orgMW)
	reportHandler := NewReportHandler(deps.SummaryUC, log)
	reports.Get("/summary", reportHandler.GetSummary)

	// Administración: solo con la llave de servicio, sin sesión de usuario
	admin := api.Group("/admin", RequireServiceRole())
	admin.Get("/organizations", orgHandler.AdminList)
}
