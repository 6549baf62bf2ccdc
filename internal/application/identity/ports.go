package identity

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// TxRunner ejecuta fn con repos de usuarios y tokens atados a una misma transacción.
type TxRunner interface {
	RunIdentity(ctx context.Context, fn func(users repository.UserRepository, tokens repository.TokenRepository) error) error
}

// OrderCascader pide al servicio de órdenes cancelar las órdenes de un usuario que se elimina.
type OrderCascader interface {
	CascadeUser(ctx context.Context, userID int64) (*dto.CascadeReport, error)
}

// JWTConfig configuración para emisión y verificación de tokens.
type JWTConfig struct {
	AccessSecret      string
	RefreshSecret     string
	AccessExpMinutes  int
	RefreshExpMinutes int
	Issuer            string
}
