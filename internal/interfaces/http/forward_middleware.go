package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/orders"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
)

const localCaller = "caller"

// CredentialVerifier verificación reenviada contra el servicio de identidad.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, method, path string) (*dto.CredentialsResponse, error)
}

// ForwardCredentials pregunta a identidad si el portador del token puede hacer esta petición.
// En los cambios de stock (?quantity=) la ruta original declarada en el cuerpo sustituye a la literal,
// así un cliente que compra vía /orders obtiene el PUT sobre el producto.
func ForwardCredentials(v CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := bearerFromHeader(header)
		if token == "" {
			return domain.Unauthorized("MISSING_TOKEN", "Access token needed")
		}
		ctx := services.WithBearer(c.UserContext(), token)
		c.SetUserContext(ctx)

		path := c.Path()
		if c.Query("quantity") != "" {
			if declared := originalPath(c.Body()); declared != "" {
				path = declared
			}
		}

		creds, err := v.VerifyCredentials(ctx, c.Method(), path)
		if err != nil {
			return err
		}
		c.Locals(localCaller, orders.Caller{UserID: creds.UserID, Role: creds.Role})
		return c.Next()
	}
}

// GetCaller devuelve la identidad cargada por ForwardCredentials.
func GetCaller(c *fiber.Ctx) orders.Caller {
	caller, _ := c.Locals(localCaller).(orders.Caller)
	return caller
}

func originalPath(body []byte) string {
	var in dto.StockUpdateRequest
	if len(body) == 0 || json.Unmarshal(body, &in) != nil {
		return ""
	}
	return in.OriginalPath
}
