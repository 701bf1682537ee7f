package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo implementación del puerto ProfileRepository sobre PostgreSQL.
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador de persistencia para perfiles.
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

const profileColumns = `id, email, password_hash, full_name, default_org_id, is_active, created_at, updated_at`

// Create persiste un nuevo perfil. Email repetido (sin distinguir mayúsculas) devuelve ErrDuplicate.
func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Email, p.PasswordHash, p.FullName, nullIfEmpty(p.DefaultOrgID), p.IsActive,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID obtiene un perfil por ID.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

// GetByEmail obtiene un perfil por email sin distinguir mayúsculas.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE LOWER(email) = LOWER($1)`, email)
}

// SetDefaultOrg fija la organización por defecto del usuario.
func (r *ProfileRepo) SetDefaultOrg(ctx context.Context, userID, orgID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE profiles SET default_org_id = $2, updated_at = NOW() WHERE id = $1`,
		userID, nullIfEmpty(orgID),
	)
	if err != nil {
		return fmt.Errorf("set default org: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepo) getOne(ctx context.Context, query string, arg string) (*entity.Profile, error) {
	p, err := scanProfile(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var (
		p          entity.Profile
		defaultOrg *string
	)
	if err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &defaultOrg, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.DefaultOrgID = deref(defaultOrg)
	return &p, nil
}
