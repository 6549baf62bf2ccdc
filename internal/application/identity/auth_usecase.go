package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/permission"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/jwt"
)

// Principal identidad resuelta de un access token.
type Principal struct {
	UserID   int64
	RoleID   *int64
	RoleName string
}

// AuthUseCase emisión de credenciales y resolución/autorización de access tokens.
type AuthUseCase struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	roles  *RoleUseCase
	tx     TxRunner
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, tokens repository.TokenRepository, roles *RoleUseCase, tx TxRunner, jwtCfg JWTConfig) *AuthUseCase {
	if jwtCfg.RefreshSecret == "" {
		jwtCfg.RefreshSecret = jwtCfg.AccessSecret + ":refresh"
	}
	return &AuthUseCase{users: users, tokens: tokens, roles: roles, tx: tx, jwtCfg: jwtCfg}
}

// SignUp registra un usuario con el rol por defecto y le emite sus tokens.
func (uc *AuthUseCase) SignUp(ctx context.Context, in dto.SignUpRequest) (*dto.TokenPair, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	roleID := entity.DefaultRoleID
	user := &entity.User{Name: in.Name, Email: strings.ToLower(in.Email), PasswordHash: string(hash), RoleID: &roleID}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.Conflict("name or email already registered")
		}
		return nil, err
	}
	uc.roles.invalidateUserLists(ctx)
	return uc.issue(ctx, user.ID)
}

// LogIn verifica email/password y emite tokens. Rechaza si el usuario ya tiene un refresh token vigente;
// uno vencido o ilegible se descarta y no bloquea el ingreso.
func (uc *AuthUseCase) LogIn(ctx context.Context, in dto.LogInRequest) (*dto.TokenPair, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	}
	existing, err := uc.tokens.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if uc.live(existing) {
			return nil, domain.Conflict("User already logged in")
		}
		if err := uc.tokens.DeleteByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return uc.issue(ctx, user.ID)
}

// Renew rota el refresh token: borra el actual y emite un par nuevo.
func (uc *AuthUseCase) Renew(ctx context.Context, in dto.RenewRequest) (*dto.TokenPair, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	userID, err := jwt.Parse(uc.jwtCfg.RefreshSecret, in.RefreshToken)
	if err != nil {
		return nil, domain.Unauthorized("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}
	stored, err := uc.tokens.GetByValue(ctx, in.RefreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID != userID {
		return nil, domain.Unauthorized("INVALID_REFRESH_TOKEN", "Refresh token not found")
	}

	var pair *dto.TokenPair
	err = uc.tx.RunIdentity(ctx, func(_ repository.UserRepository, tokens repository.TokenRepository) error {
		if err := tokens.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		p, err := uc.issueWith(ctx, tokens, userID)
		pair = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// LogOut destruye el refresh token del usuario autenticado.
func (uc *AuthUseCase) LogOut(ctx context.Context, p *Principal) error {
	return uc.tokens.DeleteByUserID(ctx, p.UserID)
}

// LogOutWithRefreshToken destruye la sesión dueña del refresh token, aunque ya haya vencido.
// No requiere access token.
func (uc *AuthUseCase) LogOutWithRefreshToken(ctx context.Context, in dto.LogOutRequest) error {
	if err := dto.Validate(in); err != nil {
		return err
	}
	stored, err := uc.tokens.GetByValue(ctx, in.RefreshToken)
	if err != nil {
		return err
	}
	if stored == nil {
		return domain.NotFound("The provided refresh_token does not belong to a user")
	}
	return uc.tokens.DeleteByUserID(ctx, stored.UserID)
}

// live indica si el refresh token guardado todavía se puede usar para renovar.
func (uc *AuthUseCase) live(t *entity.Token) bool {
	userID, err := jwt.Parse(uc.jwtCfg.RefreshSecret, t.Value)
	return err == nil && userID == t.UserID
}

func (uc *AuthUseCase) issue(ctx context.Context, userID int64) (*dto.TokenPair, error) {
	return uc.issueWith(ctx, uc.tokens, userID)
}

func (uc *AuthUseCase) issueWith(ctx context.Context, tokens repository.TokenRepository, userID int64) (*dto.TokenPair, error) {
	access, err := jwt.Generate(uc.jwtCfg.AccessSecret, userID, uc.jwtCfg.Issuer, uc.jwtCfg.AccessExpMinutes)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.Generate(uc.jwtCfg.RefreshSecret, userID, uc.jwtCfg.Issuer, uc.jwtCfg.RefreshExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := tokens.Create(ctx, &entity.Token{Value: refresh, UserID: userID}); err != nil {
		return nil, err
	}
	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// AuthorizeAccessToken valida el access token (sin el prefijo Bearer) y resuelve el usuario y su rol.
// Distingue token ausente, token inválido o expirado, y usuario inexistente.
func (uc *AuthUseCase) AuthorizeAccessToken(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domain.Unauthorized("MISSING_TOKEN", "Access token needed")
	}
	userID, err := jwt.Parse(uc.jwtCfg.AccessSecret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, domain.Unauthorized("EXPIRED_TOKEN", "Access token expired")
		}
		return nil, domain.Unauthorized("INVALID_TOKEN", "Invalid access token")
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Unauthorized("UNKNOWN_SUBJECT", "The access token does not belong to a user")
	}
	p := &Principal{UserID: user.ID, RoleID: user.RoleID}
	if user.RoleID != nil {
		role, err := uc.roles.Get(ctx, *user.RoleID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if role != nil {
			p.RoleName = role.Name
		}
	}
	return p, nil
}

// Check aplica el evaluador de permisos a una petición del principal.
func (uc *AuthUseCase) Check(p *Principal, req permission.Request) error {
	req.RoleName = p.RoleName
	req.RequesterID = strconv.FormatInt(p.UserID, 10)
	d := permission.Evaluate(req)
	if !d.Allowed {
		return domain.Forbidden("%s", d.Reason)
	}
	return nil
}

// Credentials respuesta de verify-user-credentials.
func (p *Principal) Credentials() dto.CredentialsResponse {
	return dto.CredentialsResponse{UserID: p.UserID, RoleID: p.RoleID, Role: p.RoleName}
}
