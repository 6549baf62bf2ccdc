package entity

import "time"

// Token es el refresh token vigente de un usuario (a lo sumo uno por usuario).
type Token struct {
	ID        int64
	Value     string
	UserID    int64
	CreatedAt time.Time
}
