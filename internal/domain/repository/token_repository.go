package repository

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// TokenRepository persiste el refresh token vigente de cada usuario.
type TokenRepository interface {
	Create(ctx context.Context, token *entity.Token) error
	GetByUserID(ctx context.Context, userID int64) (*entity.Token, error)
	GetByValue(ctx context.Context, value string) (*entity.Token, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}
