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
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/flota-pro/internal/interfaces/http"
	"github.com/tu-usuario/flota-pro/pkg/config"
	"github.com/tu-usuario/flota-pro/pkg/logger"
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

	periodRepo := postgres.NewBillingPeriodRepository(pool)
	lineRepo := postgres.NewBillingLineRepository(pool)
	driverRepo := postgres.NewDriverRepository(pool)
	guaranteeRepo := postgres.NewGuaranteeRepository(pool)
	kmRepo := postgres.NewKmExcessRepository(pool)
	ticketRepo := postgres.NewTicketCreditRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	settlementRepo := postgres.NewSettlementRepository(pool)
	tariffRepo := postgres.NewTariffRepository(pool)
	tierRepo := postgres.NewKmExcessTierRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Fuente de conductores facturables: asignaciones vivas o control semanal.
	var driverSource repository.DriverWeekSource
	if cfg.Billing.DriverSource == "roster" {
		driverSource = postgres.NewRosterWeekSource(pool)
	} else {
		driverSource = postgres.NewAssignmentWeekSource(pool)
	}

	tariffReader := billing.NewTariffReader(tariffRepo, cfg.Billing)

	generatePeriodUC := billing.NewGeneratePeriodUseCase(
		periodRepo, lineRepo, driverSource, tariffReader,
		kmRepo, ticketRepo, guaranteeRepo, balanceRepo,
		txRunner, cfg.Billing, log,
	)
	periodUC := billing.NewPeriodUseCase(periodRepo, lineRepo, log)
	settlementUC := billing.NewSettlementUseCase(
		settlementRepo, driverRepo, periodRepo, tariffReader,
		kmRepo, ticketRepo, guaranteeRepo, balanceRepo,
		txRunner, cfg.Billing, log,
	)
	kmExcessUC := billing.NewKmExcessUseCase(kmRepo, tierRepo, driverRepo, tariffReader, log)
	ticketUC := billing.NewTicketUseCase(ticketRepo, driverRepo, log)
	balanceUC := billing.NewBalanceUseCase(balanceRepo, driverRepo, txRunner, log)
	tariffUC := billing.NewTariffUseCase(tariffRepo, tierRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Flota Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		GeneratePeriod: generatePeriodUC,
		PeriodUC:       periodUC,
		SettlementUC:   settlementUC,
		KmExcessUC:     kmExcessUC,
		TicketUC:       ticketUC,
		BalanceUC:      balanceUC,
		TariffUC:       tariffUC,
		JWTSecret:      cfg.JWT.Secret,
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
