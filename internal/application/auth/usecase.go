package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/jwt"
)

const minPasswordLen = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret               string
	ExpMinutes           int
	Issuer               string
	RefreshWindowMinutes int // el cliente debe refrescar este tiempo antes de expirar
}

// Session identidad autenticada de la petición. Se pasa explícitamente a los casos de uso;
// no hay sesión global.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// AuthUseCase casos de uso de autenticación: registro, login y ciclo de la sesión.
type AuthUseCase struct {
	profiles repository.ProfileRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(profiles repository.ProfileRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{profiles: profiles, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// SignUp crea el perfil (bcrypt) y abre sesión. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) SignUp(ctx context.Context, in dto.SignUpRequest) (*dto.SessionResponse, error) {
	email := normalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	existing, err := uc.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = email
	}
	profile := &entity.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	uc.log.Info().Str("user_id", profile.ID).Msg("usuario registrado")
	return uc.issue(profile)
}

// SignIn verifica email/password y emite un token.
func (uc *AuthUseCase) SignIn(ctx context.Context, in dto.SignInRequest) (*dto.SessionResponse, error) {
	profile, err := uc.profiles.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !profile.IsActive {
		return nil, domain.ErrForbidden
	}
	return uc.issue(profile)
}

// Authenticate valida el token y devuelve la sesión. Errores: jwt.ErrInvalidToken.
func (uc *AuthUseCase) Authenticate(token string) (*Session, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, token)
	if err != nil {
		return nil, err
	}
	s := &Session{UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// GetSession describe la sesión actual y cuándo debe refrescarse.
func (uc *AuthUseCase) GetSession(s *Session) dto.SessionInfo {
	return dto.SessionInfo{
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
		RefreshAt: uc.refreshAt(s.ExpiresAt),
		Expired:   !uc.now().Before(s.ExpiresAt),
	}
}

// Refresh emite un token nuevo para una sesión todavía válida.
func (uc *AuthUseCase) Refresh(ctx context.Context, s *Session) (*dto.SessionResponse, error) {
	profile, err := uc.profiles.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUnauthorized
	}
	if !profile.IsActive {
		return nil, domain.ErrForbidden
	}
	return uc.issue(profile)
}

// GetUser devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(profile), nil
}

// SignOut no invalida nada en el servidor (tokens sin estado); el cliente descarta el token.
func (uc *AuthUseCase) SignOut(_ context.Context, s *Session) {
	uc.log.Info().Str("user_id", s.UserID).Msg("sesión cerrada")
}

func (uc *AuthUseCase) issue(p *entity.Profile) (*dto.SessionResponse, error) {
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, p.ID, p.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		RefreshAt:   uc.refreshAt(exp),
		User:        toUserResponse(p),
	}, nil
}

func (uc *AuthUseCase) refreshAt(exp time.Time) time.Time {
	return exp.Add(-time.Duration(uc.jwtCfg.RefreshWindowMinutes) * time.Minute)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(p *entity.Profile) *dto.UserResponse {
	if p == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		DefaultOrgID: p.DefaultOrgID,
		CreatedAt:    p.CreatedAt,
	}
}
