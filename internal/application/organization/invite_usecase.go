package organization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// InviteUseCase alta, listado, revocación y aceptación de invitaciones.
type InviteUseCase struct {
	invites     repository.InviteRepository
	memberships repository.MembershipRepository
	profiles    repository.ProfileRepository
	tx          InviteTxRunner
	ttl         time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewInviteUseCase construye el caso de uso. ttl <= 0 usa entity.DefaultInviteTTL.
func NewInviteUseCase(
	invites repository.InviteRepository,
	memberships repository.MembershipRepository,
	profiles repository.ProfileRepository,
	tx InviteTxRunner,
	ttl time.Duration,
	log zerolog.Logger,
) *InviteUseCase {
	if ttl <= 0 {
		ttl = entity.DefaultInviteTTL
	}
	return &InviteUseCase{
		invites:     invites,
		memberships: memberships,
		profiles:    profiles,
		tx:          tx,
		ttl:         ttl,
		log:         log,
		now:         time.Now,
	}
}

// Create persiste las invitaciones en un solo insert. Las filas sin email (y los emails
// repetidos en el mismo envío) se descartan sin error; sin filas válidas no se toca la BD.
func (uc *InviteUseCase) Create(ctx context.Context, actor *entity.Membership, in dto.InviteMembersRequest) (*dto.InviteMembersResponse, error) {
	if err := access.Require(actor, rbac.ManageEmployees); err != nil {
		return nil, err
	}

	now := uc.now()
	seen := make(map[string]bool, len(in.Invites))
	batch := make([]*entity.Invite, 0, len(in.Invites))
	skipped := 0
	for i, row := range in.Invites {
		email := strings.ToLower(strings.TrimSpace(row.Email))
		if email == "" || seen[email] {
			skipped++
			continue
		}
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: fila %d: email inválido", domain.ErrInvalidInput, i+1)
		}
		role := rbac.RoleEmployee
		if r := strings.TrimSpace(row.Role); r != "" {
			parsed, err := rbac.ParseRole(r)
			if err != nil {
				return nil, fmt.Errorf("fila %d: %w", i+1, err)
			}
			role = parsed
		}
		if role == rbac.RoleOwner {
			return nil, fmt.Errorf("%w: fila %d: no se puede invitar como owner", domain.ErrInvalidInput, i+1)
		}
		seen[email] = true
		batch = append(batch, &entity.Invite{
			ID:        uuid.New().String(),
			OrgID:     actor.OrgID,
			Email:     email,
			Name:      strings.TrimSpace(row.Name),
			Role:      role,
			InvitedBy: actor.UserID,
			ExpiresAt: now.Add(uc.ttl),
			CreatedAt: now,
		})
	}

	resp := &dto.InviteMembersResponse{Created: []dto.InviteResponse{}, Skipped: skipped}
	if len(batch) == 0 {
		return resp, nil
	}
	if err := uc.invites.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	for _, inv := range batch {
		resp.Created = append(resp.Created, toInviteResponse(inv))
	}
	uc.log.Info().Str("org_id", actor.OrgID).Int("count", len(batch)).Msg("invitaciones creadas")
	return resp, nil
}

// List invitaciones pendientes (ni aceptadas ni vencidas).
func (uc *InviteUseCase) List(ctx context.Context, actor *entity.Membership) ([]dto.InviteResponse, error) {
	if err := access.Require(actor, rbac.ManageEmployees); err != nil {
		return nil, err
	}
	list, err := uc.invites.ListPendingByOrg(ctx, actor.OrgID, uc.now())
	if err != nil {
		return nil, err
	}
	out := make([]dto.InviteResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInviteResponse(inv))
	}
	return out, nil
}

// Revoke elimina una invitación todavía no aceptada.
func (uc *InviteUseCase) Revoke(ctx context.Context, actor *entity.Membership, inviteID string) error {
	if err := access.Require(actor, rbac.ManageEmployees); err != nil {
		return err
	}
	inv, err := uc.invites.GetByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	if err := access.SameOrg(actor, inv.OrgID); err != nil {
		return err
	}
	if inv.AcceptedAt != nil {
		return domain.ErrInviteUsed
	}
	return uc.invites.Delete(ctx, inviteID)
}

// Accept consume la invitación para el usuario autenticado y crea su membresía en la
// misma transacción. El email de la sesión debe coincidir con el invitado.
func (uc *InviteUseCase) Accept(ctx context.Context, userID, email, inviteID string) (*dto.MembershipResponse, error) {
	inv, err := uc.invites.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	if inv.AcceptedAt != nil {
		return nil, domain.ErrInviteUsed
	}
	if inv.IsExpired(now) {
		return nil, domain.ErrInviteExpired
	}
	if !strings.EqualFold(inv.Email, strings.TrimSpace(email)) {
		return nil, fmt.Errorf("%w: la invitación es para otro email", domain.ErrForbidden)
	}
	existing, err := uc.memberships.GetByOrgAndUser(ctx, inv.OrgID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el usuario ya pertenece a la organización", domain.ErrConflict)
	}

	m := &entity.Membership{
		ID:        uuid.New().String(),
		OrgID:     inv.OrgID,
		UserID:    userID,
		Role:      inv.Role,
		IsActive:  true,
		HiredDate: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.tx.RunInvite(ctx, func(invites repository.InviteRepository, memberships repository.MembershipRepository) error {
		if err := invites.MarkAccepted(ctx, inv.ID, userID, now); err != nil {
			return err
		}
		return memberships.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	uc.setDefaultOrgIfUnusable(ctx, userID, inv.OrgID)
	uc.log.Info().Str("org_id", inv.OrgID).Str("user_id", userID).Msg("invitación aceptada")
	resp := toMembershipResponse(m)
	return &resp, nil
}

// setDefaultOrgIfUnusable fija orgID como organización por defecto si el perfil no tiene
// una o si ya no tiene membresía activa en ella.
func (uc *InviteUseCase) setDefaultOrgIfUnusable(ctx context.Context, userID, orgID string) {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err != nil || profile == nil {
		return
	}
	current := profile.DefaultOrgID
	if current == orgID {
		return
	}
	if current != "" {
		m, err := uc.memberships.GetByOrgAndUser(ctx, current, userID)
		if err != nil || (m != nil && m.IsActive) {
			return
		}
	}
	if err := uc.profiles.SetDefaultOrg(ctx, userID, orgID); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Str("org_id", orgID).Msg("no se pudo fijar la organización por defecto")
	}
}
