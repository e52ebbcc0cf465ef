package entity

import "time"

// User cuenta de un integrante del equipo. El rol viaja en el JWT.
type User struct {
	ID           string
	TeamID       string
	Email        string // normalizado en minúsculas, único global (el login no pide equipo)
	PasswordHash string // bcrypt
	Name         string
	Role         string // admin, bodeguero, vendedor
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
