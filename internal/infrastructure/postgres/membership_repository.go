package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo implementación de MembershipRepository (usable con pool o tx).
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

const membershipColumns = `id, org_id, user_id, role, department, job_title, is_active,
	hired_date, terminated_date, terminated_by, reactivated_by, created_at, updated_at`

// Create persiste la membresía. La pareja (org_id, user_id) repetida devuelve ErrDuplicate.
func (r *MembershipRepo) Create(ctx context.Context, m *entity.Membership) error {
	query := `
		INSERT INTO memberships (` + membershipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.OrgID, m.UserID, string(m.Role), m.Department, m.JobTitle, m.IsActive,
		m.HiredDate, m.TerminatedDate, nullIfEmpty(m.TerminatedBy), nullIfEmpty(m.ReactivatedBy),
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// GetByID obtiene una membresía por ID.
func (r *MembershipRepo) GetByID(ctx context.Context, id string) (*entity.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByOrgAndUser obtiene la membresía (activa o no) del usuario en la organización.
func (r *MembershipRepo) GetByOrgAndUser(ctx context.Context, orgID, userID string) (*entity.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE org_id = $1 AND user_id = $2`
	return r.getOne(ctx, query, orgID, userID)
}

// ListByOrg miembros de la organización; includeInactive incluye los desactivados.
func (r *MembershipRepo) ListByOrg(ctx context.Context, orgID string, includeInactive bool) ([]*entity.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE org_id = $1 AND ($2 OR is_active)
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, orgID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()
	var list []*entity.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update actualiza rol, datos laborales y el estado del ciclo de vida.
func (r *MembershipRepo) Update(ctx context.Context, m *entity.Membership) error {
	query := `
		UPDATE memberships
		SET role            = $2,
		    department      = $3,
		    job_title       = $4,
		    is_active       = $5,
		    terminated_date = $6,
		    terminated_by   = $7,
		    reactivated_by  = $8,
		    updated_at      = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, string(m.Role), m.Department, m.JobTitle, m.IsActive,
		m.TerminatedDate, nullIfEmpty(m.TerminatedBy), nullIfEmpty(m.ReactivatedBy), m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MembershipRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Membership, error) {
	m, err := scanMembership(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

func scanMembership(row pgx.Row) (*entity.Membership, error) {
	var (
		m                           entity.Membership
		role                        string
		terminatedBy, reactivatedBy *string
	)
	err := row.Scan(
		&m.ID, &m.OrgID, &m.UserID, &role, &m.Department, &m.JobTitle, &m.IsActive,
		&m.HiredDate, &m.TerminatedDate, &terminatedBy, &reactivatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Role, err = rbac.ParseRole(role); err != nil {
		return nil, err
	}
	m.TerminatedBy = deref(terminatedBy)
	m.ReactivatedBy = deref(reactivatedBy)
	return &m, nil
}
