package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.InviteRepository = (*InviteRepo)(nil)

// InviteRepo implementación de InviteRepository (usable con pool o tx).
type InviteRepo struct {
	q Querier
}

// NewInviteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInviteRepository(q Querier) *InviteRepo {
	return &InviteRepo{q: q}
}

const inviteColumns = `id, org_id, email, name, role, invited_by, accepted_at, accepted_by, expires_at, created_at`

// CreateBatch inserta todas las invitaciones en una sola sentencia (unnest de arreglos).
func (r *InviteRepo) CreateBatch(ctx context.Context, invites []*entity.Invite) error {
	if len(invites) == 0 {
		return nil
	}
	n := len(invites)
	var (
		ids, orgs, emails, names = make([]string, n), make([]string, n), make([]string, n), make([]string, n)
		roles, invitedBy         = make([]string, n), make([]string, n)
		expires, created         = make([]time.Time, n), make([]time.Time, n)
	)
	for i, inv := range invites {
		ids[i], orgs[i], emails[i], names[i] = inv.ID, inv.OrgID, inv.Email, inv.Name
		roles[i], invitedBy[i] = string(inv.Role), inv.InvitedBy
		expires[i], created[i] = inv.ExpiresAt, inv.CreatedAt
	}
	query := `
		INSERT INTO invites (id, org_id, email, name, role, invited_by, expires_at, created_at)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::text[], $6::uuid[], $7::timestamptz[], $8::timestamptz[])`
	_, err := r.q.Exec(ctx, query, ids, orgs, emails, names, roles, invitedBy, expires, created)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invites: %w", err)
	}
	return nil
}

// GetByID obtiene una invitación por ID.
func (r *InviteRepo) GetByID(ctx context.Context, id string) (*entity.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	inv, err := scanInvite(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return inv, nil
}

// ListPendingByOrg invitaciones sin aceptar y vigentes en now.
func (r *InviteRepo) ListPendingByOrg(ctx context.Context, orgID string, now time.Time) ([]*entity.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE org_id = $1 AND accepted_at IS NULL AND expires_at > $2
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, orgID, now)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MarkAccepted consume la invitación. Solo la primera llamada tiene efecto: si ya estaba
// aceptada devuelve ErrInviteUsed.
func (r *InviteRepo) MarkAccepted(ctx context.Context, id, userID string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invites SET accepted_at = $2, accepted_by = $3 WHERE id = $1 AND accepted_at IS NULL`,
		id, at, userID,
	)
	if err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invites WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInviteUsed
}

// Delete elimina una invitación por ID.
func (r *InviteRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	return nil
}

func scanInvite(row pgx.Row) (*entity.Invite, error) {
	var (
		inv        entity.Invite
		role       string
		acceptedBy *string
	)
	err := row.Scan(
		&inv.ID, &inv.OrgID, &inv.Email, &inv.Name, &role, &inv.InvitedBy,
		&inv.AcceptedAt, &acceptedBy, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if inv.Role, err = rbac.ParseRole(role); err != nil {
		return nil, err
	}
	inv.AcceptedBy = deref(acceptedBy)
	return &inv, nil
}
