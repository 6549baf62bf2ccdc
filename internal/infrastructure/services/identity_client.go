package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/orders"
)

var _ orders.IdentityClient = (*IdentityClient)(nil)

// IdentityClient cliente del servicio de identidad.
type IdentityClient struct{ c client }

func NewIdentityClient(baseURL string, timeout time.Duration, log zerolog.Logger) *IdentityClient {
	return &IdentityClient{c: newClient("identity", baseURL, timeout, log)}
}

// VerifyCredentials verificación reenviada: method y path son los de la petición original.
func (i *IdentityClient) VerifyCredentials(ctx context.Context, method, path string) (*dto.CredentialsResponse, error) {
	var out dto.CredentialsResponse
	in := dto.VerifyCredentialsRequest{OriginalMethod: method, OriginalPath: path}
	if err := i.c.do(ctx, http.MethodPost, "/authentication/verify-user-credentials", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *IdentityClient) GetUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := i.c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
