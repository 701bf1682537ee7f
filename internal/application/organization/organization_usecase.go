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

// OrganizationUseCase lectura y ajustes de la organización actual.
type OrganizationUseCase struct {
	orgs repository.OrganizationRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewOrganizationUseCase construye el caso de uso.
func NewOrganizationUseCase(orgs repository.OrganizationRepository, log zerolog.Logger) *OrganizationUseCase {
	return &OrganizationUseCase{orgs: orgs, log: log, now: time.Now}
}

// Get cualquier miembro activo lee su organización.
func (uc *OrganizationUseCase) Get(ctx context.Context, actor *entity.Membership) (*dto.OrganizationResponse, error) {
	org, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	resp := toOrganizationResponse(org)
	return &resp, nil
}

// Rename requiere manageSettings.
func (uc *OrganizationUseCase) Rename(ctx context.Context, actor *entity.Membership, in dto.UpdateOrganizationRequest) (*dto.OrganizationResponse, error) {
	if err := access.Require(actor, rbac.ManageSettings); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	org, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	org.Name = name
	return uc.save(ctx, org)
}

// ChangePlan requiere manageOrg.
func (uc *OrganizationUseCase) ChangePlan(ctx context.Context, actor *entity.Membership, in dto.ChangePlanRequest) (*dto.OrganizationResponse, error) {
	if err := access.Require(actor, rbac.ManageOrg); err != nil {
		return nil, err
	}
	plan := strings.ToLower(strings.TrimSpace(in.Plan))
	if !entity.ValidPlan(plan) {
		return nil, fmt.Errorf("%w: plan %q desconocido", domain.ErrInvalidInput, in.Plan)
	}
	org, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	org.Plan = plan
	resp, err := uc.save(ctx, org)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("org_id", org.ID).Str("plan", plan).Msg("plan actualizado")
	return resp, nil
}

// Deactivate desactiva la organización completa (manageOrg). Sus miembros dejan de
// poder operar sobre ella.
func (uc *OrganizationUseCase) Deactivate(ctx context.Context, actor *entity.Membership) (*dto.OrganizationResponse, error) {
	if err := access.Require(actor, rbac.ManageOrg); err != nil {
		return nil, err
	}
	org, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	org.IsActive = false
	resp, err := uc.save(ctx, org)
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("org_id", org.ID).Str("actor_id", actor.UserID).Msg("organización desactivada")
	return resp, nil
}

// ListMine organizaciones donde el usuario tiene membresía activa.
func (uc *OrganizationUseCase) ListMine(ctx context.Context, userID string) ([]dto.OrganizationResponse, error) {
	list, err := uc.orgs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrganizationResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrganizationResponse(o))
	}
	return out, nil
}

// ListAll todas las organizaciones; solo para la llave de servicio.
func (uc *OrganizationUseCase) ListAll(ctx context.Context, page dto.PageRequest) ([]dto.OrganizationResponse, error) {
	page.DefaultPage()
	list, err := uc.orgs.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrganizationResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrganizationResponse(o))
	}
	return out, nil
}

// Permissions rol y capacidades del llamador en su organización.
func (uc *OrganizationUseCase) Permissions(actor *entity.Membership) (*dto.PermissionsResponse, error) {
	if actor == nil || !actor.IsActive {
		return nil, domain.ErrSetupRequired
	}
	granted := rbac.Capabilities(actor.Role)
	caps := make([]string, 0, len(granted))
	for _, c := range granted {
		caps = append(caps, string(c))
	}
	matrix := make(map[string]bool, len(rbac.AllCapabilities))
	for _, c := range rbac.AllCapabilities {
		matrix[string(c)] = rbac.HasPermission(actor.Role, c)
	}
	return &dto.PermissionsResponse{
		OrgID:        actor.OrgID,
		Role:         string(actor.Role),
		Capabilities: caps,
		Matrix:       matrix,
	}, nil
}

func (uc *OrganizationUseCase) load(ctx context.Context, actor *entity.Membership) (*entity.Organization, error) {
	if actor == nil || !actor.IsActive {
		return nil, domain.ErrSetupRequired
	}
	org, err := uc.orgs.GetByID(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrSetupRequired
	}
	return org, nil
}

func (uc *OrganizationUseCase) save(ctx context.Context, org *entity.Organization) (*dto.OrganizationResponse, error) {
	org.UpdatedAt = uc.now()
	if err := uc.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	resp := toOrganizationResponse(org)
	return &resp, nil
}
