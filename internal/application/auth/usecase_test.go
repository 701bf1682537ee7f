package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

type fakeProfiles struct {
	mu   sync.Mutex
	byID map[string]*entity.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byID: map[string]*entity.Profile{}}
}

func (f *fakeProfiles) Create(_ context.Context, p *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == p.Email {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) SetDefaultOrg(_ context.Context, userID, orgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[userID]; ok {
		p.DefaultOrgID = orgID
	}
	return nil
}

func newTestUseCase() (*AuthUseCase, *fakeProfiles) {
	repo := newFakeProfiles()
	uc := NewAuthUseCase(repo, JWTConfig{
		Secret:               "test-secret",
		ExpMinutes:           60,
		Issuer:               "crm-test",
		RefreshWindowMinutes: 5,
	}, zerolog.Nop())
	return uc, repo
}

func TestSignUp_CreaPerfilYSesion(t *testing.T) {
	uc, repo := newTestUseCase()

	sess, err := uc.SignUp(context.Background(), dto.SignUpRequest{
		Email: "  Ana@Example.com ", Password: "secreto123", FullName: "Ana",
	})
	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Equal(t, 5*time.Minute, sess.ExpiresAt.Sub(sess.RefreshAt))

	stored, _ := repo.GetByID(context.Background(), sess.User.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto123", stored.PasswordHash)
	assert.True(t, stored.IsActive)
}

func TestSignUp_Validaciones(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "sin-arroba", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SignUp(ctx, dto.SignUpRequest{Email: "a@b.co", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SignUp(ctx, dto.SignUpRequest{Email: "a@b.co", Password: "secreto123"})
	require.NoError(t, err)
	_, err = uc.SignUp(ctx, dto.SignUpRequest{Email: "A@B.CO", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestSignIn(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)

	sess, err := uc.SignIn(ctx, dto.SignInRequest{Email: "ANA@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "nadie@example.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	for _, p := range repo.byID {
		p.IsActive = false
	}
	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthenticate_YGetSession(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()
	signed, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)

	s, err := uc.Authenticate(signed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, s.UserID)
	assert.Equal(t, "ana@example.com", s.Email)

	info := uc.GetSession(s)
	assert.False(t, info.Expired)
	assert.True(t, info.RefreshAt.Before(info.ExpiresAt))

	uc.now = func() time.Time { return s.ExpiresAt.Add(time.Second) }
	assert.True(t, uc.GetSession(s).Expired)

	_, err = uc.Authenticate("no.es.token")
	assert.Error(t, err)
}

func TestRefresh_YGetUser(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()
	signed, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)
	s := &Session{UserID: signed.User.ID, Email: signed.User.Email}

	refreshed, err := uc.Refresh(ctx, s)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, repo.SetDefaultOrg(ctx, s.UserID, "org-1"))
	user, err := uc.GetUser(ctx, s.UserID)
	require.NoError(t, err)
	assert.Equal(t, "org-1", user.DefaultOrgID)

	_, err = uc.GetUser(ctx, "desconocido")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Refresh(ctx, &Session{UserID: "desconocido"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
