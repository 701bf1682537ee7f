package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrSetupRequired indica que el usuario no tiene organización ni membresía activa;
	// el cliente debe redirigir al flujo de onboarding.
	ErrSetupRequired = errors.New("organización o membresía no configurada")
	ErrInviteExpired = errors.New("la invitación expiró")
	ErrInviteUsed    = errors.New("la invitación ya fue utilizada")
)
