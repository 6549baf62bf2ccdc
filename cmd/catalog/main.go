package main

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/internal/infrastructure/redis"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load("catalog", 3002)
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
		Str("stock_mode", cfg.Stock.Mode).
		Msg("iniciando servicio")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool, postgres.SchemaCatalog); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()
	c := cache.New(redis.NewStore(rdb), cache.Options{TTL: cfg.Redis.TTL, SingleFlight: cfg.Cache.SingleFlight}, log.Component("cache").Zerolog())

	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)

	identityClient := services.NewIdentityClient(cfg.Services.IdentityURL, cfg.Services.Timeout, log.Component("identity-client").Zerolog())
	ordersClient := services.NewOrdersClient(cfg.Services.OrdersURL, cfg.Services.CascadeTimeout, log.Component("orders-client").Zerolog())

	productUC := catalog.NewProductUseCase(productRepo, categoryRepo, ordersClient, c, log.Component("products").Zerolog())
	categoryUC := catalog.NewCategoryUseCase(categoryRepo, productRepo, c)
	stockUC := catalog.NewStockUseCase(productRepo, productRepo, cfg.Stock.Mode, c, log.Component("stock").Zerolog())

	app := httpRouter.NewApp(cfg.App.Name, log)
	httpRouter.CatalogRouter(app, httpRouter.CatalogDeps{
		ProductUC:  productUC,
		CategoryUC: categoryUC,
		StockUC:    stockUC,
		Verifier:   identityClient,
	})

	httpRouter.Serve(app, cfg.HTTP.Addr(), log)
	log.Info().Msg("servicio detenido")
}
