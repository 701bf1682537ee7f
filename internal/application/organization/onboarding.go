package organization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// OnboardingConfig valores por defecto del asistente.
type OnboardingConfig struct {
	DefaultPlan string
}

// OnboardingUseCase asistente de alta en tres pasos: organización, invitaciones, confirmación.
type OnboardingUseCase struct {
	orgs        repository.OrganizationRepository
	memberships repository.MembershipRepository
	profiles    repository.ProfileRepository
	invites     *InviteUseCase
	cfg         OnboardingConfig
	log         zerolog.Logger
	now         func() time.Time
}

// NewOnboardingUseCase construye el asistente. Un plan por defecto vacío o desconocido cae a "pro".
func NewOnboardingUseCase(
	orgs repository.OrganizationRepository,
	memberships repository.MembershipRepository,
	profiles repository.ProfileRepository,
	invites *InviteUseCase,
	cfg OnboardingConfig,
	log zerolog.Logger,
) *OnboardingUseCase {
	if !entity.ValidPlan(cfg.DefaultPlan) {
		cfg.DefaultPlan = entity.PlanPro
	}
	return &OnboardingUseCase{
		orgs:        orgs,
		memberships: memberships,
		profiles:    profiles,
		invites:     invites,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// CreateOrganization paso 1: crea la organización, la membresía owner del usuario y, sin
// que un fallo lo impida, la fija como organización por defecto del perfil.
//
// Las escrituras no son atómicas: si falla la membresía, la organización queda huérfana;
// se registra en el log con su id y se devuelve el error.
func (uc *OnboardingUseCase) CreateOrganization(ctx context.Context, userID string, in dto.CreateOrganizationRequest) (*dto.CreateOrganizationResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la organización es obligatorio", domain.ErrInvalidInput)
	}
	plan := strings.ToLower(strings.TrimSpace(in.Plan))
	if plan == "" {
		plan = uc.cfg.DefaultPlan
	}
	if !entity.ValidPlan(plan) {
		return nil, fmt.Errorf("%w: plan %q desconocido", domain.ErrInvalidInput, in.Plan)
	}
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	now := uc.now()
	org := &entity.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		Plan:      plan,
		OwnerID:   userID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("crear organización: %w", err)
	}

	m := &entity.Membership{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		UserID:    userID,
		Role:      rbac.RoleOwner,
		IsActive:  true,
		HiredDate: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.memberships.Create(ctx, m); err != nil {
		uc.log.Error().Err(err).
			Str("org_id", org.ID).
			Str("user_id", userID).
			Msg("organización creada sin membresía owner")
		return nil, fmt.Errorf("crear membresía owner: %w", err)
	}

	defaultSet := true
	if err := uc.profiles.SetDefaultOrg(ctx, userID, org.ID); err != nil {
		defaultSet = false
		uc.log.Warn().Err(err).
			Str("org_id", org.ID).
			Str("user_id", userID).
			Msg("no se pudo fijar la organización por defecto")
	}

	uc.log.Info().Str("org_id", org.ID).Str("user_id", userID).Str("plan", plan).Msg("organización creada")
	return &dto.CreateOrganizationResponse{
		Organization:  toOrganizationResponse(org),
		Membership:    toMembershipResponse(m),
		DefaultOrgSet: defaultSet,
	}, nil
}

// InviteMembers paso 2: delega en InviteUseCase.Create (manageEmployees, filas vacías descartadas).
func (uc *OnboardingUseCase) InviteMembers(ctx context.Context, actor *entity.Membership, in dto.InviteMembersRequest) (*dto.InviteMembersResponse, error) {
	return uc.invites.Create(ctx, actor, in)
}

// Complete paso 3: confirma la membresía y resume el estado. No escribe nada.
func (uc *OnboardingUseCase) Complete(ctx context.Context, actor *entity.Membership) (*dto.OnboardingCompleteResponse, error) {
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

	pending := 0
	if actor.Can(rbac.ManageEmployees) {
		list, err := uc.invites.invites.ListPendingByOrg(ctx, org.ID, uc.now())
		if err != nil {
			return nil, err
		}
		pending = len(list)
	}
	return &dto.OnboardingCompleteResponse{
		OrgID:          org.ID,
		OrgName:        org.Name,
		Role:           string(actor.Role),
		PendingInvites: pending,
		Completed:      true,
		Next:           "/dashboard",
	}, nil
}
