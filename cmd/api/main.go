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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("driver", cfg.Ledger.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas /api responderán 401")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento del libro")
	}
	defer backend.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	reader := ledger.NewBalanceReader(backend.Movements, backend.Products)
	var invalidator ledger.CacheInvalidator
	var levels *cache.StockLevelCache
	if cfg.Cache.Size > 0 {
		levels, err = cache.NewStockLevelCache(reader, cfg.Cache.Size, log.Component("cache"))
		if err != nil {
			log.Fatal().Err(err).Msg("caché de stock")
		}
		invalidator = levels
	}

	create := ledger.NewCreateTransactionUseCase(backend.Runner, invalidator, recorder, log.Component("ledger"), ledger.Options{
		MaxRetries: cfg.Ledger.MaxRetries,
		Location:   cfg.Ledger.Location(),
	})
	txHandler := httpRouter.NewTransactionHandler(
		create,
		ledger.NewReverseTransactionUseCase(create),
		ledger.NewTransactionQueryUseCase(backend.Transactions, backend.Movements),
		log.Component("http"),
	)
	auditor := ledger.NewIntegrityAuditor(backend.Movements, log.Component("audit"))
	adjust := ledger.NewAdjustmentCalculator(backend.Movements)
	var stockHandler *httpRouter.StockHandler
	if levels != nil {
		stockHandler = httpRouter.NewStockHandler(levels, reader, auditor, adjust, log.Component("http"))
	} else {
		stockHandler = httpRouter.NewStockHandler(nil, reader, auditor, adjust, log.Component("http"))
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Transactions: txHandler,
		Stock:        stockHandler,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ServiceName:  cfg.App.Name,
		JWTSecret:    cfg.JWT.Secret,
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
