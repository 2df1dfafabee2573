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

	_ "github.com/jhoicas/pos-api/docs"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/access"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// backend agrupa lo que cada driver de persistencia aporta al arranque.
type backend struct {
	runner   sales.TxRunner
	saleRepo repository.SaleRepository
	itemRepo repository.SaleItemRepository
	userRepo repository.UserRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var be backend
	switch cfg.DB.Driver {
	case config.DriverMemory:
		be, err = memoryBackend(cfg.Seed)
	default:
		be, err = postgresBackend(ctx, cfg, log)
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("inicializar persistencia")
	}
	defer be.close()

	policy := access.NewRolePolicy()
	retry := sales.RetryPolicy{
		MaxAttempts: cfg.Tx.MaxAttempts,
		BaseDelay:   cfg.Tx.RetryBase,
		MaxDelay:    cfg.Tx.RetryMax,
	}
	saleUC := sales.NewSaleUseCase(be.runner, be.saleRepo, be.itemRepo, policy, retry, log)
	saleItemUC := sales.NewSaleItemUseCase(be.runner, be.itemRepo, policy, retry, log)
	authUC := auth.NewAuthUseCase(be.userRepo, auth.JWTConfig{
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

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		SaleUC:     saleUC,
		SaleItemUC: saleItemUC,
		JWTSecret:  cfg.JWT.Secret,
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

func postgresBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (backend, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return backend{}, err
	}
	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return backend{}, err
	}
	for _, name := range applied {
		log.Info().Str("migration", name).Msg("migración aplicada")
	}

	return backend{
		runner:   postgres.NewTxRunner(pool, cfg.Tx.LockTimeout),
		saleRepo: postgres.NewSaleRepository(pool),
		itemRepo: postgres.NewSaleItemRepository(pool),
		userRepo: postgres.NewUserRepository(pool),
		close:    pool.Close,
	}, nil
}

func memoryBackend(seed config.SeedConfig) (backend, error) {
	store := memory.NewStore()
	if err := seedMemory(store, seed); err != nil {
		return backend{}, err
	}
	return backend{
		runner:   store,
		saleRepo: store.SaleRepository(),
		itemRepo: store.SaleItemRepository(),
		userRepo: store.UserRepository(),
		close:    func() {},
	}, nil
}
