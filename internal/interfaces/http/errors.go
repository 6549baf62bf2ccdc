package http

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// ErrorHandler traduce los errores devueltos por los handlers a respuestas JSON.
// Los errores no clasificados se registran y salen como 500 sin detalle.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var de *domain.Error
		if errors.As(err, &de) {
			return c.Status(statusFor(de.Kind)).JSON(dto.ErrorResponse{Code: de.Code, Message: de.Message})
		}

		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			return upstream(c, log, ue)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}

		for _, kind := range []error{domain.ErrValidation, domain.ErrNotFound, domain.ErrConflict, domain.ErrForbidden, domain.ErrUnauthorized} {
			if errors.Is(err, kind) {
				return c.Status(statusFor(kind)).JSON(dto.ErrorResponse{Code: "ERROR", Message: kind.Error()})
			}
		}
		if errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrEmailAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
		}

		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "internal server error"})
	}
}

func statusFor(kind error) int {
	switch kind {
	case domain.ErrValidation, domain.ErrInsufficientStock:
		return fiber.StatusBadRequest
	case domain.ErrUnauthorized:
		return fiber.StatusUnauthorized
	case domain.ErrForbidden:
		return fiber.StatusForbidden
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// upstream 4xx remoto se propaga con su cuerpo; el resto es 502, o 504 si venció el timeout.
func upstream(c *fiber.Ctx, log *logger.Logger, ue *domain.UpstreamError) error {
	if ue.Status >= 400 && ue.Status < 500 {
		if json.Valid(ue.Body) {
			c.Status(ue.Status).Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(ue.Body)
		}
		return c.Status(ue.Status).JSON(dto.ErrorResponse{Code: "UPSTREAM_REJECTED", Message: ue.Error()})
	}

	log.Error().Err(ue).Str("upstream", ue.Service).Int("upstream_status", ue.Status).
		Bool("timeout", ue.Timeout).Str("path", c.Path()).Msg("fallo de servicio dependiente")
	if ue.Timeout {
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "UPSTREAM_TIMEOUT", Message: ue.Service + " did not respond in time"})
	}
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM_ERROR", Message: ue.Service + " is unavailable"})
}

// bindJSON parsea el cuerpo; un JSON mal formado es un error de validación.
func bindJSON(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return domain.Validation("invalid request body")
	}
	return nil
}

func pagination(c *fiber.Ctx) (dto.Pagination, error) {
	return dto.ParsePagination(c.Query("page_number"), c.Query("page_size"))
}
