package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	GeneratePeriod *billing.GeneratePeriodUseCase
	PeriodUC       *billing.PeriodUseCase
	SettlementUC   *billing.SettlementUseCase
	KmExcessUC     *billing.KmExcessUseCase
	TicketUC       *billing.TicketUseCase
	BalanceUC      *billing.BalanceUseCase
	TariffUC       *billing.TariffUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Períodos de facturación
	periods := protected.Group("/billing/periods")
	periodHandler := NewPeriodHandler(deps.GeneratePeriod, deps.PeriodUC)
	periods.Post("/generate", RequireRole(RoleAdmin, RoleSupervisor), periodHandler.Generate)
	periods.Post("/preview", RequireRole(RoleAdmin, RoleSupervisor), periodHandler.Preview)
	periods.Get("/:id/lines", periodHandler.Lines)
	periods.Get("/:year/:week", periodHandler.GetByWeek)
	periods.Post("/:id/close", RequireRole(RoleAdmin, RoleSupervisor), periodHandler.Close)
	periods.Post("/:id/reopen", RequireRole(RoleAdmin), periodHandler.Reopen)

	// Liquidaciones por terminación de contrato
	settlements := protected.Group("/settlements")
	settlementHandler := NewSettlementHandler(deps.SettlementUC)
	settlements.Post("/", RequireRole(RoleAdmin, RoleSupervisor), settlementHandler.Create)
	settlements.Get("/:id", settlementHandler.GetByID)
	settlements.Post("/:id/approve", RequireRole(RoleAdmin, RoleSupervisor), settlementHandler.Approve)

	// Registros de exceso de kilometraje
	kmExcess := protected.Group("/km-excess")
	kmHandler := NewKmExcessHandler(deps.KmExcessUC)
	kmExcess.Post("/", RequireRole(RoleAdmin, RoleSupervisor, RoleCajero), kmHandler.Create)
	kmExcess.Put("/:id", RequireRole(RoleAdmin, RoleSupervisor), kmHandler.Update)
	kmExcess.Delete("/:id", RequireRole(RoleAdmin, RoleSupervisor), kmHandler.Delete)

	// Tickets a favor del conductor
	tickets := protected.Group("/tickets")
	ticketHandler := NewTicketHandler(deps.TicketUC)
	tickets.Post("/", RequireRole(RoleAdmin, RoleSupervisor, RoleCajero), ticketHandler.Create)
	tickets.Post("/:id/approve", RequireRole(RoleAdmin, RoleSupervisor), ticketHandler.Approve)
	tickets.Post("/:id/reject", RequireRole(RoleAdmin, RoleSupervisor), ticketHandler.Reject)

	// Consultas y ajustes por conductor
	drivers := protected.Group("/drivers")
	balanceHandler := NewBalanceHandler(deps.BalanceUC)
	drivers.Get("/:driverId/balance", balanceHandler.Get)
	drivers.Get("/:driverId/balance/movements", balanceHandler.Movements)
	drivers.Post("/:driverId/balance/adjustments", RequireRole(RoleAdmin, RoleSupervisor, RoleCajero), balanceHandler.Adjust)
	drivers.Get("/:driverId/km-excess", kmHandler.ListByDriver)
	drivers.Get("/:driverId/tickets", ticketHandler.ListByDriver)

	// Catálogo de tarifas
	tariffs := protected.Group("/tariffs")
	tariffHandler := NewTariffHandler(deps.TariffUC)
	tariffs.Get("/concepts", tariffHandler.ListConcepts)
	tariffs.Put("/concepts", RequireRole(RoleAdmin), tariffHandler.UpsertConcept)
	tariffs.Get("/km-tiers", tariffHandler.ListTiers)
	tariffs.Put("/km-tiers", RequireRole(RoleAdmin), tariffHandler.ReplaceTiers)
}
