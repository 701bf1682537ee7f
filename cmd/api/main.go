package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/crm-api/internal/application/access"
	appanalytics "github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/organization"
	infrapdf "github.com/jhoicas/crm-api/internal/infrastructure/pdf"
	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/crm-api/internal/interfaces/http"
	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.AutoMigrate {
		version, err := postgres.Migrate(cfg.DB.ConnectionString(), postgres.MigrateUp)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Uint("version", version).Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	orgRepo := postgres.NewOrganizationRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	inviteRepo := postgres.NewInviteRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	estimateRepo := postgres.NewEstimateRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(profileRepo, auth.JWTConfig{
		Secret:               cfg.JWT.Secret,
		ExpMinutes:           cfg.JWT.Expiration,
		Issuer:               cfg.JWT.Issuer,
		RefreshWindowMinutes: cfg.JWT.RefreshWindow,
	}, log.Component("auth"))

	inviteUC := organization.NewInviteUseCase(
		inviteRepo, membershipRepo, profileRepo, txRunner,
		cfg.Onboarding.InviteTTL(), log.Component("invites"),
	)
	onboardingUC := organization.NewOnboardingUseCase(
		orgRepo, membershipRepo, profileRepo, inviteUC,
		organization.OnboardingConfig{DefaultPlan: cfg.Onboarding.DefaultPlan},
		log.Component("onboarding"),
	)

	// PDF: cotizaciones y facturas
	pdfUC := billing.NewPDFUseCase(
		estimateRepo, invoiceRepo, orgRepo, customerRepo, infrapdf.NewMarotoPDFGenerator(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "CRM API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		Resolver:       access.NewResolver(profileRepo, orgRepo, membershipRepo),
		OnboardingUC:   onboardingUC,
		InviteUC:       inviteUC,
		OrganizationUC: organization.NewOrganizationUseCase(orgRepo, log.Component("organization")),
		MembershipUC:   organization.NewMembershipUseCase(membershipRepo, log.Component("staff")),
		CustomerUC:     crm.NewCustomerUseCase(customerRepo, membershipRepo),
		ProjectUC:      crm.NewProjectUseCase(projectRepo, customerRepo, membershipRepo),
		ProductUC:      crm.NewProductUseCase(productRepo),
		EstimateUC:     crm.NewEstimateUseCase(estimateRepo, customerRepo, projectRepo, productRepo, txRunner, log.Component("estimates")),
		InvoiceUC:      crm.NewInvoiceUseCase(invoiceRepo, customerRepo, projectRepo, productRepo, log.Component("invoices")),
		PDFUC:          pdfUC,
		SummaryUC:      appanalytics.NewSummaryUseCase(reportRepo),
		AnonKey:        cfg.Backend.AnonKey,
		ServiceRoleKey: cfg.Backend.ServiceRoleKey,
		ServiceName:    cfg.App.Name,
		Log:            log.Component("http"),
		Ping: func(ctx context.Context) error {
			return postgres.Ping(ctx, pool)
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
