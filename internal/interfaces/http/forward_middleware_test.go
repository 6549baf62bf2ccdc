package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/infrastructure/services"
	apphttp "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

type verifyCall struct{ method, path, bearer string }

type stubVerifier struct {
	calls []verifyCall
	creds *dto.CredentialsResponse
	err   error
}

func (s *stubVerifier) VerifyCredentials(ctx context.Context, method, path string) (*dto.CredentialsResponse, error) {
	s.calls = append(s.calls, verifyCall{method, path, services.BearerFrom(ctx)})
	if s.err != nil {
		return nil, s.err
	}
	return s.creds, nil
}

func buildForwardApp(v apphttp.CredentialVerifier) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	ok := func(c *fiber.Ctx) error {
		caller := apphttp.GetCaller(c)
		return c.JSON(fiber.Map{"user_id": caller.UserID, "role": caller.Role, "bearer": services.BearerFrom(c.UserContext())})
	}
	g := app.Group("/products", apphttp.ForwardCredentials(v))
	g.Get("/:id", ok)
	g.Put("/:id", ok)
	return app
}

func TestForward_ReenviaMetodoYRutaLiteral(t *testing.T) {
	v := &stubVerifier{creds: &dto.CredentialsResponse{UserID: 7, Role: "customer"}}
	resp, body := do(t, buildForwardApp(v), http.MethodGet, "/products/abc", "Bearer tok-1", "")

	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	require.Len(t, v.calls, 1)
	assert.Equal(t, verifyCall{"GET", "/products/abc", "tok-1"}, v.calls[0])
	assert.Contains(t, body, `"role":"customer"`)
	assert.Contains(t, body, `"bearer":"tok-1"`)
}

func TestForward_CambioDeStockDeclaraRutaDeOrdenes(t *testing.T) {
	v := &stubVerifier{creds: &dto.CredentialsResponse{UserID: 7, Role: "customer"}}
	resp, _ := do(t, buildForwardApp(v), http.MethodPut, "/products/abc?quantity=2", "Bearer tok-1",
		`{"original_path":"/orders","previous_stock":false}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/orders", v.calls[0].path)
	assert.Equal(t, "PUT", v.calls[0].method)
}

func TestForward_SinQuantityIgnoraRutaDeclarada(t *testing.T) {
	v := &stubVerifier{creds: &dto.CredentialsResponse{UserID: 7, Role: "customer"}}
	_, _ = do(t, buildForwardApp(v), http.MethodPut, "/products/abc", "Bearer tok-1", `{"original_path":"/orders"}`)

	require.Len(t, v.calls, 1)
	assert.Equal(t, "/products/abc", v.calls[0].path)
}

func TestForward_SinToken401SinLlamarAIdentidad(t *testing.T) {
	v := &stubVerifier{}
	resp, body := do(t, buildForwardApp(v), http.MethodGet, "/products/abc", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "MISSING_TOKEN")
	assert.Empty(t, v.calls)
}

func TestForward_RechazoDeIdentidadSePropaga(t *testing.T) {
	v := &stubVerifier{err: &domain.UpstreamError{
		Service: "identity", Status: http.StatusForbidden,
		Body: []byte(`{"code":"FORBIDDEN","message":"not allowed for reader users"}`),
	}}
	resp, body := do(t, buildForwardApp(v), http.MethodPut, "/products/abc", "Bearer tok-1", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"code":"FORBIDDEN","message":"not allowed for reader users"}`, body)
}

func TestForward_IdentidadLenta504(t *testing.T) {
	v := &stubVerifier{err: &domain.UpstreamError{Service: "identity", Timeout: true, Err: context.DeadlineExceeded}}
	resp, body := do(t, buildForwardApp(v), http.MethodGet, "/products/abc", "Bearer tok-1", "")
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Contains(t, body, "UPSTREAM_TIMEOUT")
}

func TestForward_IdentidadCaida502(t *testing.T) {
	v := &stubVerifier{err: &domain.UpstreamError{Service: "identity", Status: http.StatusInternalServerError}}
	resp, _ := do(t, buildForwardApp(v), http.MethodGet, "/products/abc", "Bearer tok-1", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorHandler
// ──────────────────────────────────────────────────────────────────────────────

func TestErrorHandler_Mapeo(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validacion", domain.Validation("bad"), http.StatusBadRequest, "VALIDATION"},
		{"stock", domain.InsufficientStock("Requested quantity of product id p not available"), http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"no encontrado", domain.NotFound("x"), http.StatusNotFound, "NOT_FOUND"},
		{"conflicto", domain.Conflict("Order id o is already cancelled"), http.StatusConflict, "CONFLICT"},
		{"prohibido", domain.Forbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{"duplicado", domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{"interno", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
			app.Get("/", func(*fiber.Ctx) error { return tc.err })
			resp, body := do(t, app, http.MethodGet, "/", "", "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, body, tc.body)
			assert.NotContains(t, body, "connection refused")
		})
	}
}
