package main

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/internal/infrastructure/redis"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load("identity", 3001)
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
	if err := postgres.EnsureSchema(ctx, pool, postgres.SchemaIdentity); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()
	c := cache.New(redis.NewStore(rdb), cache.Options{TTL: cfg.Redis.TTL, SingleFlight: cfg.Cache.SingleFlight}, log.Component("cache").Zerolog())

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ordersClient := services.NewOrdersClient(cfg.Services.OrdersURL, cfg.Services.CascadeTimeout, log.Component("orders-client").Zerolog())

	roleUC := identity.NewRoleUseCase(roleRepo, userRepo, c)
	userUC := identity.NewUserUseCase(userRepo, roleUC, txRunner, ordersClient, c, log.Component("users").Zerolog())
	authUC := identity.NewAuthUseCase(userRepo, tokenRepo, roleUC, txRunner, identity.JWTConfig{
		AccessSecret:      cfg.JWT.AccessSecret,
		RefreshSecret:     cfg.JWT.RefreshSecret,
		AccessExpMinutes:  cfg.JWT.AccessExpiration,
		RefreshExpMinutes: cfg.JWT.RefreshExpiration,
		Issuer:            cfg.JWT.Issuer,
	})

	app := httpRouter.NewApp(cfg.App.Name, log)
	httpRouter.IdentityRouter(app, httpRouter.IdentityDeps{
		AuthUC: authUC,
		UserUC: userUC,
		RoleUC: roleUC,
	})

	httpRouter.Serve(app, cfg.HTTP.Addr(), log)
	log.Info().Msg("servicio detenido")
}
