package cache

import (
	"fmt"
	"strconv"
)

// Claves jerárquicas. Los listados terminan en el descriptor de paginación
// ("page_number:<n>:page_size:<s>" o "all") para poder borrarlos por prefijo.

func ProductKey(id string) string { return "product:" + id }

func ProductsKey(page string) string { return "products:" + page }

func CategoryProductsKey(categoryID, page string) string {
	return CategoryProductsPrefix(categoryID) + page
}

// CategoryProductsPrefix termina en ":" para no alcanzar a otra categoría con id más largo.
func CategoryProductsPrefix(categoryID string) string {
	return "products:category:" + categoryID + ":"
}

func CategoryKey(id string) string { return "category:" + id }

const CategoriesKey = "categories"

func RoleKey(id int64) string { return "role:" + strconv.FormatInt(id, 10) }

const RolesKey = "roles"

func UserKey(id int64) string { return "user:" + strconv.FormatInt(id, 10) }

func UsersKey(page string) string { return "users:" + page }

func RoleUsersKey(roleID int64, page string) string { return RoleUsersPrefix(roleID) + page }

func RoleUsersPrefix(roleID int64) string {
	return fmt.Sprintf("users:role:%d:", roleID)
}

// OrderKey scopeUser 0 para quien puede ver todas las órdenes.
func OrderKey(id string, scopeUser int64) string {
	if scopeUser == 0 {
		return "order:" + id
	}
	return fmt.Sprintf("order:%s:user:%d", id, scopeUser)
}

// OrderPrefix alcanza todas las variantes derivadas de una orden (por usuario, productos).
func OrderPrefix(id string) string { return "order:" + id + ":" }

func OrderProductsKey(id string, scopeUser int64, page string) string {
	return OrderKey(id, scopeUser) + ":products:" + page
}

// OrdersKey listado global (scopeUser 0) o de un usuario.
func OrdersKey(scopeUser int64, page string) string {
	if scopeUser == 0 {
		return "orders:" + page
	}
	return UserOrdersPrefix(scopeUser) + page
}

func UserOrdersPrefix(userID int64) string {
	return fmt.Sprintf("orders:user:%d:", userID)
}

// Prefijos de los listados sin alcance; también cubren los listados con alcance.
const (
	ProductsPrefix = "products"
	OrdersPrefix   = "orders"
	UsersPrefix    = "users"
)
