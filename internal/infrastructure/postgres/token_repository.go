package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo refresh tokens; la restricción UNIQUE(user_id) garantiza uno por usuario.
type TokenRepo struct {
	q Querier
}

func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

// Create falla con ErrConflict si el usuario ya tiene un token vigente.
func (r *TokenRepo) Create(ctx context.Context, token *entity.Token) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO tokens (value, user_id) VALUES ($1, $2) RETURNING id, created_at`,
		token.Value, token.UserID,
	).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("User already logged in")
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepo) GetByUserID(ctx context.Context, userID int64) (*entity.Token, error) {
	return r.getOne(ctx, `SELECT id, value, user_id, created_at FROM tokens WHERE user_id = $1`, userID)
}

func (r *TokenRepo) GetByValue(ctx context.Context, value string) (*entity.Token, error) {
	return r.getOne(ctx, `SELECT id, value, user_id, created_at FROM tokens WHERE value = $1`, value)
}

func (r *TokenRepo) getOne(ctx context.Context, query string, arg any) (*entity.Token, error) {
	var t entity.Token
	if err := r.q.QueryRow(ctx, query, arg).Scan(&t.ID, &t.Value, &t.UserID, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
