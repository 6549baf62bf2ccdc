// seed puebla una base recién creada. Con -target identity crea el administrador inicial
// (SEED_ADMIN_NAME, SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD); con -target catalog carga
// productos y categorías desde un CSV si el catálogo está vacío.
//
// Uso:
//
//	go run ./cmd/seed -target identity
//	go run ./cmd/seed -target catalog -catalog fixtures/productos.csv [-charset iso-8859-1]
//
// Usa las mismas variables DB_* y REDIS_* que el servicio correspondiente; DB_NAME toma
// por defecto el nombre del target.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jhoicas/tienda-api/internal/application/cache"
	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/application/seed"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/internal/infrastructure/redis"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func main() {
	target := flag.String("target", "identity", "base a poblar: identity o catalog")
	catalogPath := flag.String("catalog", "", "CSV de productos (name, price obligatorias; description, stock, category opcionales)")
	charset := flag.String("charset", "", "codificación del CSV: utf-8 (por defecto), iso-8859-1 o windows-1252")
	flag.Parse()

	cfg := config.LoadSeed(*target)
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "seed",
	})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()
	c := cache.New(redis.NewStore(rdb), cache.Options{TTL: cfg.Redis.TTL}, log.Component("cache").Zerolog())

	switch *target {
	case "identity":
		if err := postgres.EnsureSchema(ctx, pool, postgres.SchemaIdentity); err != nil {
			log.Fatal().Err(err).Msg("esquema")
		}
		userRepo := postgres.NewUserRepository(pool)
		roleUC := identity.NewRoleUseCase(postgres.NewRoleRepository(pool), userRepo, c)
		// sin cascador: el seed nunca borra usuarios
		userUC := identity.NewUserUseCase(userRepo, roleUC, postgres.NewTxRunner(pool), nil, c, log.Component("users").Zerolog())

		admin := seed.Admin{Name: cfg.Seed.AdminName, Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
		if _, err := seed.NewAdminSeeder(userUC, log.Component("seed").Zerolog()).EnsureAdmin(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("seed de administrador")
		}

	case "catalog":
		if *catalogPath == "" {
			log.Fatal().Msg("-catalog es requerido con -target catalog")
		}
		if err := postgres.EnsureSchema(ctx, pool, postgres.SchemaCatalog); err != nil {
			log.Fatal().Err(err).Msg("esquema")
		}
		f, err := os.Open(*catalogPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *catalogPath).Msg("abrir CSV")
		}
		defer f.Close()
		r, err := seed.Decode(f, *charset)
		if err != nil {
			log.Fatal().Err(err).Msg("charset")
		}

		productRepo := postgres.NewProductRepository(pool)
		categoryRepo := postgres.NewCategoryRepository(pool)
		// sin cascador: el seed nunca borra productos
		productUC := catalog.NewProductUseCase(productRepo, categoryRepo, nil, c, log.Component("products").Zerolog())
		categoryUC := catalog.NewCategoryUseCase(categoryRepo, productRepo, c)

		report, err := seed.NewCatalogSeeder(productRepo, categoryRepo, categoryUC, productUC, log.Component("seed").Zerolog()).Load(ctx, r)
		if err != nil {
			log.Fatal().Err(err).Msg("seed de catálogo")
		}
		log.Info().Bool("skipped", report.Skipped).Int("products", report.Products).Msg("seed terminado")

	default:
		log.Fatal().Str("target", *target).Msg("target desconocido, use identity o catalog")
	}
}
