package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/domain/permission"
)

// AuthHandler emisión de credenciales y verificación para otros servicios.
type AuthHandler struct {
	uc *identity.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *identity.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// SignUp godoc
// @Summary      Registrar usuario
// @Tags         authentication
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignUpRequest  true  "Datos de registro"
// @Success      201   {object}  dto.TokenPair
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /authentication/sign-up [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var in dto.SignUpRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.SignUp(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// LogIn godoc
// @Summary      Iniciar sesión
// @Tags         authentication
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LogInRequest  true  "Credenciales"
// @Success      200   {object}  dto.TokenPair
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "ya existe una sesión activa"
// @Router       /authentication/log-in [post]
func (h *AuthHandler) LogIn(c *fiber.Ctx) error {
	var in dto.LogInRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.LogIn(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Renew godoc
// @Summary      Renovar access token
// @Tags         authentication
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RenewRequest  true  "Refresh token"
// @Success      200   {object}  dto.TokenPair
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /authentication/renew-access-token [post]
func (h *AuthHandler) Renew(c *fiber.Ctx) error {
	var in dto.RenewRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Renew(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// LogOut godoc
// @Summary      Cerrar sesión
// @Description  Con refresh_token en el cuerpo no hace falta access token (sirve aunque ambos hayan vencido).
// @Tags         authentication
// @Accept       json
// @Param        body  body  dto.LogOutRequest  false  "Refresh token de la sesión"
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /authentication/log-out [delete]
func (h *AuthHandler) LogOut(c *fiber.Ctx) error {
	var in dto.LogOutRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if in.RefreshToken != "" {
		if err := h.uc.LogOutWithRefreshToken(c.UserContext(), in); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}

	p, err := h.uc.AuthorizeAccessToken(c.UserContext(), bearerFromHeader(c.Get(fiber.HeaderAuthorization)))
	if err != nil {
		return err
	}
	if err := h.uc.LogOut(c.UserContext(), p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VerifyCredentials godoc
// @Summary      Verificar credenciales (uso entre servicios)
// @Description  Con original_method/original_path evalúa el permiso sobre la petición original del servicio que llama.
// @Tags         authentication
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyCredentialsRequest  false  "Petición original"
// @Success      200   {object}  dto.CredentialsResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /authentication/verify-user-credentials [post]
func (h *AuthHandler) VerifyCredentials(c *fiber.Ctx) error {
	var in dto.VerifyCredentialsRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	p := GetPrincipal(c)
	req := permission.Request{
		Method:          c.Method(),
		ForwardedMethod: in.OriginalMethod,
		ForwardedPath:   in.OriginalPath,
	}
	if err := h.uc.Check(p, req); err != nil {
		return err
	}
	return c.JSON(p.Credentials())
}
