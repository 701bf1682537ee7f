package crm

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// paginate recorta la lista ya filtrada y devuelve los metadatos de página.
func paginate[T any](items []T, p dto.PageRequest) ([]T, dto.PageResponse) {
	p.DefaultPage()
	total := len(items)
	start := min(p.Offset, total)
	end := min(start+p.Limit, total)
	return items[start:end], dto.PageResponse{Limit: p.Limit, Offset: p.Offset, Total: total}
}

// resolveAssignee decide el dueño (o asignado) de una fila. Un employee solo puede
// asignarse a sí mismo; los roles de organización pueden elegir cualquier miembro activo.
// requested vacío conserva current, o el llamador si current también está vacío.
func resolveAssignee(ctx context.Context, memberships repository.MembershipRepository, actor *entity.Membership, requested, current string) (string, error) {
	if requested == "" {
		if current != "" {
			return current, nil
		}
		return actor.UserID, nil
	}
	if requested == actor.UserID || requested == current {
		return requested, nil
	}
	if !access.OrgWide(actor) {
		return "", fmt.Errorf("%w: un employee no puede asignar filas a otros", domain.ErrForbidden)
	}
	m, err := memberships.GetByOrgAndUser(ctx, actor.OrgID, requested)
	if err != nil {
		return "", err
	}
	if m == nil || !m.IsActive {
		return "", fmt.Errorf("%w: %s no es miembro activo de la organización", domain.ErrInvalidInput, requested)
	}
	return requested, nil
}

// customerInOrg valida que el cliente exista y sea de la organización.
func customerInOrg(ctx context.Context, customers repository.CustomerRepository, orgID, customerID string) (*entity.Customer, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer_id es obligatorio", domain.ErrInvalidInput)
	}
	c, err := customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.OrgID != orgID {
		return nil, fmt.Errorf("%w: cliente no encontrado en la organización", domain.ErrInvalidInput)
	}
	return c, nil
}

// projectInOrg valida un proyecto opcional.
func projectInOrg(ctx context.Context, projects repository.ProjectRepository, orgID, projectID string) error {
	if projectID == "" {
		return nil
	}
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p == nil || p.OrgID != orgID {
		return fmt.Errorf("%w: proyecto no encontrado en la organización", domain.ErrInvalidInput)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
