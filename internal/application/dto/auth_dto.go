package dto

import "time"

// SignUpRequest registro de un usuario nuevo (sin organización todavía).
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignInRequest inicio de sesión con email y contraseña.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse perfil del usuario (sin hash de contraseña).
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	DefaultOrgID string    `json:"default_org_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionResponse token y ventana de refresco de la sesión.
type SessionResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	RefreshAt   time.Time     `json:"refresh_at"`
	User        *UserResponse `json:"user,omitempty"`
}

// SessionInfo estado de la sesión actual (sin reemitir token).
type SessionInfo struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	RefreshAt time.Time `json:"refresh_at"`
	Expired   bool      `json:"expired"`
}
