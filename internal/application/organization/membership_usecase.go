package organization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// MembershipUseCase ciclo de vida de los miembros del equipo (página de staff).
type MembershipUseCase struct {
	memberships repository.MembershipRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewMembershipUseCase construye el caso de uso.
func NewMembershipUseCase(memberships repository.MembershipRepository, log zerolog.Logger) *MembershipUseCase {
	return &MembershipUseCase{memberships: memberships, log: log, now: time.Now}
}

// List miembros de la organización del llamador. Requiere manageEmployees.
func (uc *MembershipUseCase) List(ctx context.Context, actor *entity.Membership, includeInactive bool) ([]dto.MembershipResponse, error) {
	if err := access.Require(actor, rbac.ManageEmployees); err != nil {
		return nil, err
	}
	list, err := uc.memberships.ListByOrg(ctx, actor.OrgID, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MembershipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMembershipResponse(m))
	}
	return out, nil
}

// Deactivate despide al miembro: la membresía queda inactiva con fecha y autor de la baja.
// Repetirla sobre una membresía ya inactiva vuelve a validar permisos y no escribe:
// conserva la fecha de la primera baja.
func (uc *MembershipUseCase) Deactivate(ctx context.Context, actor *entity.Membership, membershipID string) (*dto.MembershipResponse, error) {
	if err := access.Require(actor, rbac.ManageEmployees); err != nil {
		return nil, err
	}
	target, err := uc.load(ctx, actor, membershipID)
	if err != nil {
		return nil, err
	}
	if target.Role == rbac.RoleOwner {
		return nil, fmt.Errorf("%w: el dueño de la organización no puede desactivarse", domain.ErrForbidden)
	}
	if target.UserID == actor.UserID {
		return nil, fmt.Errorf("%w: no puede desactivar su propia membresía", domain.ErrConflict)
	}
	if !target.IsActive {
		resp := toMembershipResponse(target)
		return &resp, nil
	}

	now := uc.now()
	target.IsActive = false
	target.TerminatedDate = &now
	target.TerminatedBy = actor.UserID
	target.UpdatedAt = now
	if err := uc.memberships.Update(ctx, target); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("org_id", target.OrgID).
		Str("membership_id", target.ID).
		Str("actor_id", actor.UserID).
		Msg("membresía desactivada")
	resp := toMembershipResponse(target)
	return &resp, nil
}

// Reactivate recontrata al miembro: limpia la fecha de baja y registra quién reactivó.
func (uc *MembershipUseCase) Reactivate(ctx context.Context, actor *entity.Membership, membershipID string) (*dto.MembershipResponse, error) {
	if err := access.Require(actor, rbac.ManageEmployees); err != nil {
		return nil, err
	}
	target, err := uc.load(ctx, actor, membershipID)
	if err != nil {
		return nil, err
	}
	if target.IsActive {
		resp := toMembershipResponse(target)
		return &resp, nil
	}

	target.IsActive = true
	target.TerminatedDate = nil
	target.TerminatedBy = ""
	target.ReactivatedBy = actor.UserID
	target.UpdatedAt = uc.now()
	if err := uc.memberships.Update(ctx, target); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("org_id", target.OrgID).
		Str("membership_id", target.ID).
		Str("actor_id", actor.UserID).
		Msg("membresía reactivada")
	resp := toMembershipResponse(target)
	return &resp, nil
}

// UpdateRole cambia rol, departamento y cargo. Solo owner y admin; el rol owner no se
// asigna y la membresía del dueño no se modifica.
func (uc *MembershipUseCase) UpdateRole(ctx context.Context, actor *entity.Membership, membershipID string, in dto.UpdateMembershipRequest) (*dto.MembershipResponse, error) {
	if actor == nil || !actor.IsActive || !rbac.CanManageRoles(actor.Role) {
		return nil, fmt.Errorf("%w: solo owner o admin cambian roles", domain.ErrForbidden)
	}
	var role rbac.Role
	if strings.TrimSpace(in.Role) != "" {
		r, err := rbac.ParseRole(strings.TrimSpace(in.Role))
		if err != nil {
			return nil, err
		}
		if r == rbac.RoleOwner {
			return nil, fmt.Errorf("%w: el rol owner no se puede asignar", domain.ErrInvalidInput)
		}
		role = r
	}
	target, err := uc.load(ctx, actor, membershipID)
	if err != nil {
		return nil, err
	}
	if target.Role == rbac.RoleOwner {
		return nil, fmt.Errorf("%w: la membresía del dueño no se modifica", domain.ErrForbidden)
	}

	if role != "" {
		target.Role = role
	}
	if in.Department != nil {
		target.Department = strings.TrimSpace(*in.Department)
	}
	if in.JobTitle != nil {
		target.JobTitle = strings.TrimSpace(*in.JobTitle)
	}
	target.UpdatedAt = uc.now()
	if err := uc.memberships.Update(ctx, target); err != nil {
		return nil, err
	}
	resp := toMembershipResponse(target)
	return &resp, nil
}

// load obtiene la membresía objetivo y verifica que sea de la organización del llamador.
func (uc *MembershipUseCase) load(ctx context.Context, actor *entity.Membership, id string) (*entity.Membership, error) {
	target, err := uc.memberships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.SameOrg(actor, target.OrgID); err != nil {
		return nil, err
	}
	return target, nil
}
