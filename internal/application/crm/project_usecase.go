package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/search"
)

// ProjectUseCase CRUD de proyectos. Un employee ve los proyectos de los que es dueño o
// en los que está asignado.
type ProjectUseCase struct {
	repo        repository.ProjectRepository
	customers   repository.CustomerRepository
	memberships repository.MembershipRepository
	now         func() time.Time
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(
	repo repository.ProjectRepository,
	customers repository.CustomerRepository,
	memberships repository.MembershipRepository,
) *ProjectUseCase {
	return &ProjectUseCase{repo: repo, customers: customers, memberships: memberships, now: time.Now}
}

// Create crea un proyecto.
func (uc *ProjectUseCase) Create(ctx context.Context, actor *entity.Membership, in dto.ProjectRequest) (*dto.ProjectResponse, error) {
	if err := access.Require(actor, rbac.ManageProjects); err != nil {
		return nil, err
	}
	p := &entity.Project{ID: uuid.New().String(), OrgID: actor.OrgID}
	if err := uc.apply(ctx, actor, p, in); err != nil {
		return nil, err
	}
	p.CreatedAt = p.UpdatedAt
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// Get obtiene un proyecto visible para el llamador.
func (uc *ProjectUseCase) Get(ctx context.Context, actor *entity.Membership, id string) (*dto.ProjectResponse, error) {
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// List proyectos visibles, con búsqueda por nombre/descripción y filtro de estado.
func (uc *ProjectUseCase) List(ctx context.Context, actor *entity.Membership, f dto.ListFilter) (*dto.ProjectListResponse, error) {
	if err := access.Require(actor, rbac.ManageProjects); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		if !rbac.CanAccessProject(actor.Role, p.OwnerID, p.AssignedTo, actor.UserID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if !search.Matches(f.Search, p.Name, p.Description) {
			continue
		}
		items = append(items, *toProjectResponse(p))
	}
	pageItems, page := paginate(items, f.PageRequest)
	return &dto.ProjectListResponse{Items: pageItems, Page: page}, nil
}

// Update reemplaza los datos del proyecto.
func (uc *ProjectUseCase) Update(ctx context.Context, actor *entity.Membership, id string, in dto.ProjectRequest) (*dto.ProjectResponse, error) {
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, actor, p, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// Delete elimina un proyecto visible para el llamador.
func (uc *ProjectUseCase) Delete(ctx context.Context, actor *entity.Membership, id string) error {
	if _, err := uc.load(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *ProjectUseCase) load(ctx context.Context, actor *entity.Membership, id string) (*entity.Project, error) {
	if err := access.Require(actor, rbac.ManageProjects); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.Row(actor, p.OrgID, p.OwnerID, p.AssignedTo); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *ProjectUseCase) apply(ctx context.Context, actor *entity.Membership, p *entity.Project, in dto.ProjectRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: el nombre del proyecto es obligatorio", domain.ErrInvalidInput)
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = p.Status
	}
	if status == "" {
		status = entity.ProjectStatusPlanned
	}
	if !oneOf(status, entity.ProjectStatusPlanned, entity.ProjectStatusActive, entity.ProjectStatusOnHold, entity.ProjectStatusCompleted) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return fmt.Errorf("%w: la fecha de fin es anterior a la de inicio", domain.ErrInvalidInput)
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return fmt.Errorf("%w: el presupuesto no puede ser negativo", domain.ErrInvalidInput)
	}
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID != "" {
		if _, err := customerInOrg(ctx, uc.customers, actor.OrgID, customerID); err != nil {
			return err
		}
	}
	owner, err := resolveAssignee(ctx, uc.memberships, actor, strings.TrimSpace(in.OwnerID), p.OwnerID)
	if err != nil {
		return err
	}
	assigned := strings.TrimSpace(in.AssignedTo)
	if assigned != "" && assigned != p.AssignedTo {
		m, err := uc.memberships.GetByOrgAndUser(ctx, actor.OrgID, assigned)
		if err != nil {
			return err
		}
		if m == nil || !m.IsActive {
			return fmt.Errorf("%w: %s no es miembro activo de la organización", domain.ErrInvalidInput, assigned)
		}
	}

	p.Name = name
	p.Description = in.Description
	p.CustomerID = customerID
	p.Status = status
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	if in.Budget != nil {
		p.Budget = in.Budget.Round(2)
	}
	p.OwnerID = owner
	p.AssignedTo = assigned
	p.UpdatedAt = uc.now()
	return nil
}

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:          p.ID,
		OrgID:       p.OrgID,
		CustomerID:  p.CustomerID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		OwnerID:     p.OwnerID,
		AssignedTo:  p.AssignedTo,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
