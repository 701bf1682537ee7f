package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Resolver obtiene la membresía activa del usuario en la organización de la petición.
type Resolver struct {
	profiles    repository.ProfileRepository
	orgs        repository.OrganizationRepository
	memberships repository.MembershipRepository
}

// NewResolver construye el resolver.
func NewResolver(
	profiles repository.ProfileRepository,
	orgs repository.OrganizationRepository,
	memberships repository.MembershipRepository,
) *Resolver {
	return &Resolver{profiles: profiles, orgs: orgs, memberships: memberships}
}

// Resolve devuelve la membresía del usuario en requestedOrgID o, si viene vacío, en su
// organización por defecto (o la primera a la que pertenezca).
//
// Retorna:
//   - domain.ErrSetupRequired si el usuario no tiene organización o membresía activa
//     y no pidió una organización concreta (el cliente debe ir al onboarding).
//   - domain.ErrForbidden si pidió una organización donde no es miembro activo.
func (r *Resolver) Resolve(ctx context.Context, userID, requestedOrgID string) (*entity.Membership, *entity.Organization, error) {
	explicit := requestedOrgID != ""
	orgID := requestedOrgID
	if !explicit {
		id, err := r.defaultOrgID(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		orgID = id
	}

	deny := domain.ErrSetupRequired
	if explicit {
		deny = domain.ErrForbidden
	}

	org, err := r.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolver organización: %w", err)
	}
	if org == nil {
		return nil, nil, deny
	}
	if !org.IsActive {
		return nil, nil, fmt.Errorf("%w: organización desactivada", domain.ErrForbidden)
	}

	m, err := r.memberships.GetByOrgAndUser(ctx, orgID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolver membresía: %w", err)
	}
	if m == nil || !m.IsActive {
		return nil, nil, deny
	}
	return m, org, nil
}

// defaultOrgID usa la organización por defecto del perfil solo si sigue siendo usable
// (organización activa con membresía activa); si no, la primera organización activa.
func (r *Resolver) defaultOrgID(ctx context.Context, userID string) (string, error) {
	profile, err := r.profiles.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolver perfil: %w", err)
	}
	if profile == nil {
		return "", domain.ErrSetupRequired
	}
	// ListByUser solo trae organizaciones con membresía activa
	orgs, err := r.orgs.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolver organizaciones: %w", err)
	}
	first := ""
	for _, o := range orgs {
		if !o.IsActive {
			continue
		}
		if o.ID == profile.DefaultOrgID {
			return o.ID, nil
		}
		if first == "" {
			first = o.ID
		}
	}
	if first == "" {
		return "", domain.ErrSetupRequired
	}
	return first, nil
}
