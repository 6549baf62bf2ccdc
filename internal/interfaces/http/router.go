package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/application/orders"
)

// IdentityDeps dependencias del router de identidad.
type IdentityDeps struct {
	AuthUC *identity.AuthUseCase
	UserUC *identity.UserUseCase
	RoleUC *identity.RoleUseCase
}

// IdentityRouter registra autenticación, usuarios y roles.
func IdentityRouter(app *fiber.App, deps IdentityDeps) {
	authenticate := AuthorizeAccessToken(deps.AuthUC)
	verify := VerifyPermissions(deps.AuthUC)

	// Autenticación (pública salvo la verificación; log-out acepta refresh token o access token)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := app.Group("/authentication")
	authGroup.Post("/sign-up", authHandler.SignUp)
	authGroup.Post("/log-in", authHandler.LogIn)
	authGroup.Post("/renew-access-token", authHandler.Renew)
	authGroup.Delete("/log-out", authHandler.LogOut)
	authGroup.Post("/verify-user-credentials", authenticate, authHandler.VerifyCredentials)

	// Usuarios: el permiso se evalúa por ruta para que :user_id esté disponible
	userHandler := NewUserHandler(deps.UserUC)
	users := app.Group("/users", authenticate)
	users.Get("/", verify, userHandler.List)
	users.Get("/role/:role_id", verify, userHandler.ListByRole)
	users.Get("/:user_id", verify, userHandler.Get)
	users.Post("/", verify, userHandler.Create)
	users.Put("/:user_id", verify, userHandler.Update)
	users.Delete("/:user_id", verify, userHandler.Delete)

	roleHandler := NewRoleHandler(deps.RoleUC)
	roles := app.Group("/roles", authenticate, verify)
	roles.Get("/", roleHandler.List)
	roles.Get("/:role_id", roleHandler.Get)
	roles.Post("/", roleHandler.Create)
	roles.Put("/:role_id", roleHandler.Update)
	roles.Delete("/:role_id", roleHandler.Delete)
}

// CatalogDeps dependencias del router de catálogo.
type CatalogDeps struct {
	ProductUC  *catalog.ProductUseCase
	CategoryUC *catalog.CategoryUseCase
	StockUC    *catalog.StockUseCase
	Verifier   CredentialVerifier
}

// CatalogRouter registra productos y categorías; todo pasa por la verificación reenviada.
func CatalogRouter(app *fiber.App, deps CatalogDeps) {
	forward := ForwardCredentials(deps.Verifier)

	productHandler := NewProductHandler(deps.ProductUC, deps.StockUC)
	products := app.Group("/products", forward)
	products.Get("/", productHandler.List)
	products.Get("/category/:category_id", productHandler.ListByCategory)
	products.Get("/:id", productHandler.Get)
	products.Post("/", productHandler.Create)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := app.Group("/categories", forward)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:category_id", categoryHandler.Get)
	categories.Post("/", categoryHandler.Create)
	categories.Put("/:category_id", categoryHandler.Update)
	categories.Delete("/:category_id", categoryHandler.Delete)
}

// OrdersDeps dependencias del router de órdenes.
type OrdersDeps struct {
	OrderUC  *orders.OrderUseCase
	Verifier CredentialVerifier
}

// OrdersRouter registra las rutas de órdenes y las cascadas de borrado.
func OrdersRouter(app *fiber.App, deps OrdersDeps) {
	h := NewOrderHandler(deps.OrderUC)
	g := app.Group("/orders", ForwardCredentials(deps.Verifier))

	g.Get("/", h.List)
	g.Get("/user/:user_id", h.ListByUser)
	g.Get("/:order_id", h.Get)
	g.Get("/:order_id/products", h.Products)
	g.Post("/", h.Create)
	g.Put("/:order_id/update", h.Update)
	g.Put("/:order_id/cancel", h.Cancel)

	g.Post("/cascade/users/:user_id", h.CascadeUser)
	g.Post("/cascade/products/:product_id", h.CascadeProduct)
}
