package main

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/orders"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/internal/infrastructure/redis"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load("orders", 3003)
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
		Msg("iniciando servicio")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool, postgres.SchemaOrders); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()
	c := cache.New(redis.NewStore(rdb), cache.Options{TTL: cfg.Redis.TTL, SingleFlight: cfg.Cache.SingleFlight}, log.Component("cache").Zerolog())

	orderRepo := postgres.NewOrderRepository(pool)

	// Identidad verifica credenciales y resuelve dueños; catálogo reserva y libera stock.
	identityClient := services.NewIdentityClient(cfg.Services.IdentityURL, cfg.Services.Timeout, log.Component("identity-client").Zerolog())
	catalogClient := services.NewCatalogClient(cfg.Services.CatalogURL, cfg.Services.Timeout, log.Component("catalog-client").Zerolog())

	orderUC := orders.NewOrderUseCase(orderRepo, catalogClient, identityClient, c, log.Component("orders").Zerolog())

	app := httpRouter.NewApp(cfg.App.Name, log)
	httpRouter.OrdersRouter(app, httpRouter.OrdersDeps{
		OrderUC:  orderUC,
		Verifier: identityClient,
	})

	httpRouter.Serve(app, cfg.HTTP.Addr(), log)
	log.Info().Msg("servicio detenido")
}
