package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transactions *TransactionHandler
	Stock        *StockHandler
	Metrics      http.Handler // opcional: se expone en /metrics
	ServiceName  string
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	txns := api.Group("/transactions")
	txns.Post("/", deps.Transactions.Create)
	txns.Get("/:id", deps.Transactions.GetByID)
	txns.Patch("/:id/notes", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), deps.Transactions.AmendNotes)
	txns.Post("/:id/reverse", RequireRole(jwt.RoleAdmin), deps.Transactions.Reverse)

	stock := api.Group("/stock")
	stock.Get("/", deps.Stock.List)
	stock.Post("/availability", deps.Stock.Availability)
	stock.Post("/adjustment-plan", deps.Stock.AdjustmentPlanBatch)
	stock.Get("/:productId", deps.Stock.Get)
	stock.Get("/:productId/history", deps.Stock.History)
	stock.Get("/:productId/integrity", deps.Stock.Integrity)
	stock.Post("/:productId/adjustment-plan", deps.Stock.AdjustmentPlan)
}
