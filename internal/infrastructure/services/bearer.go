package services

import "context"

type bearerKey struct{}

// WithBearer guarda el token de la petición entrante para reenviarlo a otros servicios.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerFrom devuelve "" si no hay token en el contexto.
func BearerFrom(ctx context.Context) string {
	s, _ := ctx.Value(bearerKey{}).(string)
	return s
}
