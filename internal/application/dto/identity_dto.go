package dto

import "time"

// SignUpRequest registro público; el rol es siempre el por defecto.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// LogInRequest credenciales de inicio de sesión.
type LogInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RenewRequest refresh token a rotar.
type RenewRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogOutRequest cierre de sesión por refresh token, sin access token.
type LogOutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair respuesta de sign-up, log-in y renovación.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// VerifyCredentialsRequest cuerpo opcional de la verificación reenviada.
type VerifyCredentialsRequest struct {
	OriginalMethod string `json:"original_method"`
	OriginalPath   string `json:"original_path"`
}

// CredentialsResponse identidad resuelta de un token.
type CredentialsResponse struct {
	UserID int64  `json:"userId"`
	RoleID *int64 `json:"roleId"`
	Role   string `json:"role"`
}

// CreateUserRequest alta de usuario por un administrador.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	RoleID   *int64 `json:"role_id" validate:"omitempty,min=1"`
}

// UpdateUserRequest campos opcionales; password cambia invalida el refresh token.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,password"`
	RoleID   *int64  `json:"role_id" validate:"omitempty,min=1"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleID    *int64    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeleteUserResponse resultado del borrado con la cascada sobre órdenes.
type DeleteUserResponse struct {
	User    UserResponse   `json:"user"`
	Cascade *CascadeReport `json:"cascade"`
}

// RoleRequest alta o cambio de nombre de un rol.
type RoleRequest struct {
	Name string `json:"name" validate:"required,min=3,max=30"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
