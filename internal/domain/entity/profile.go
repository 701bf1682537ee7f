package entity

import "time"

// Profile es la identidad de un usuario registrado (tabla profiles).
type Profile struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	FullName     string
	DefaultOrgID string // vacío = sin organización por defecto
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
