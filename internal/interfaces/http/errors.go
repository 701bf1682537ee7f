package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/pkg/jwt"
)

// apiError código y status HTTP de un error de dominio.
type apiError struct {
	status int
	code   string
}

// el orden importa: el primer sentinel que coincida gana.
var errorTable = []struct {
	err error
	api apiError
}{
	{domain.ErrSetupRequired, apiError{fiber.StatusNotFound, "SETUP_REQUIRED"}},
	{domain.ErrForbidden, apiError{fiber.StatusForbidden, "FORBIDDEN"}},
	{jwt.ErrInvalidToken, apiError{fiber.StatusUnauthorized, "INVALID_TOKEN"}},
	{domain.ErrUnauthorized, apiError{fiber.StatusUnauthorized, "UNAUTHORIZED"}},
	{domain.ErrUserNotFound, apiError{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrNotFound, apiError{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrInvalidInput, apiError{fiber.StatusBadRequest, "INVALID_INPUT"}},
	{domain.ErrEmailAlreadyExists, apiError{fiber.StatusConflict, "EMAIL_EXISTS"}},
	{domain.ErrDuplicate, apiError{fiber.StatusConflict, "DUPLICATE"}},
	{domain.ErrInviteExpired, apiError{fiber.StatusGone, "INVITE_EXPIRED"}},
	{domain.ErrInviteUsed, apiError{fiber.StatusConflict, "INVITE_USED"}},
	{domain.ErrConflict, apiError{fiber.StatusConflict, "CONFLICT"}},
}

func classify(err error) (apiError, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.api, true
		}
	}
	return apiError{fiber.StatusInternalServerError, "INTERNAL"}, false
}

// respondError traduce err a dto.ErrorResponse. Los errores no clasificados se registran
// y se devuelven como INTERNAL sin exponer el detalle.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	api, known := classify(err)
	msg := err.Error()
	if !known {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", requestID(c)).
			Msg("error no controlado")
		msg = "error interno"
	}
	return c.Status(api.status).JSON(dto.ErrorResponse{Code: api.code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
