package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appadmin "github.com/labelhub/labelhub-api/internal/application/admin"
	"github.com/labelhub/labelhub-api/internal/application/auth"
	"github.com/labelhub/labelhub-api/internal/application/carriers"
	appdealer "github.com/labelhub/labelhub-api/internal/application/dealer"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/infrastructure/labelsprovider"
	infrapdf "github.com/labelhub/labelhub-api/internal/infrastructure/pdf"
	"github.com/labelhub/labelhub-api/internal/infrastructure/postgres"
	"github.com/labelhub/labelhub-api/internal/infrastructure/scheduler"
	httpRouter "github.com/labelhub/labelhub-api/internal/interfaces/http"
	"github.com/labelhub/labelhub-api/pkg/config"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	accountRepo := postgres.NewAccountRepository(pool)
	subUserRepo := postgres.NewSubUserRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	carrierRepo := postgres.NewCarrierRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	shipmentRepo := postgres.NewShipmentPoolRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	provider := labelsprovider.NewClient(cfg.Provider, log)
	pdfGenerator := infrapdf.NewLabelPDFGenerator()

	jwtCfg := auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}
	authUC := auth.NewAuthUseCase(accountRepo, subUserRepo, jobRepo, jwtCfg)
	issueUC := labels.NewIssueUseCase(accountRepo, subUserRepo, txRunner, provider, log)
	historyUC := labels.NewHistoryUseCase(accountRepo, subUserRepo, historyRepo)
	carrierUC := carriers.NewCarrierUseCase(accountRepo, subUserRepo, carrierRepo)
	dealerUC := appdealer.NewDealerUseCase(accountRepo, subUserRepo, txRunner)
	adminUC := appadmin.NewAdminUseCase(adminRepo, accountRepo, historyRepo, shipmentRepo, provider, appadmin.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LabelHub API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		IssueUC:   issueUC,
		HistoryUC: historyUC,
		CarrierUC: carrierUC,
		DealerUC:  dealerUC,
		AdminUC:   adminUC,
		PDFGen:    pdfGenerator,
		JWTSecret: cfg.JWT.Secret,
	})

	// Scheduler de jobs durables: al arrancar drena los auto-logouts vencidos
	// durante un reinicio.
	schedCtx, stopScheduler := context.WithCancel(ctx)
	sched := scheduler.New(jobRepo, cfg.Scheduler.PollInterval, cfg.Scheduler.BatchSize, log)
	sched.Register(entity.JobKindAutoLogout, scheduler.AutoLogoutHandler(accountRepo, log))
	go sched.Run(schedCtx)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
