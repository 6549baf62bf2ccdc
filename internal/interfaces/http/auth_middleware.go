package http

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/domain/permission"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
)

// localPrincipal clave de c.Locals con el *identity.Principal autenticado.
const localPrincipal = "principal"

// AuthorizeAccessToken resuelve el Bearer Token a un usuario y su rol.
// Deja el token en el contexto de la petición para reenviarlo a otros servicios.
func AuthorizeAccessToken(auth *identity.AuthUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		p, err := auth.AuthorizeAccessToken(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(localPrincipal, p)
		c.SetUserContext(services.WithBearer(c.UserContext(), token))
		return c.Next()
	}
}

// VerifyPermissions evalúa el permiso del principal sobre la petición literal.
// El segmento propio sólo existe en /users/:user_id; un role_id en el cuerpo cuenta como cambio de rol.
func VerifyPermissions(auth *identity.AuthUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := permission.Request{
			PathFirstSegment:   c.Params("user_id"),
			Method:             c.Method(),
			AttemptsRoleChange: hasRoleID(c.Body()),
		}
		if err := auth.Check(GetPrincipal(c), req); err != nil {
			return err
		}
		return c.Next()
	}
}

// GetPrincipal devuelve el principal cargado por AuthorizeAccessToken.
func GetPrincipal(c *fiber.Ctx) *identity.Principal {
	p, _ := c.Locals(localPrincipal).(*identity.Principal)
	return p
}

func hasRoleID(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	var partial struct {
		RoleID json.RawMessage `json:"role_id"`
	}
	if err := json.Unmarshal(body, &partial); err != nil {
		return false
	}
	return len(partial.RoleID) > 0 && string(partial.RoleID) != "null"
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
