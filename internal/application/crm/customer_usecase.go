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

// CustomerUseCase CRUD de clientes con alcance por fila (employee solo ve los suyos).
type CustomerUseCase struct {
	repo        repository.CustomerRepository
	memberships repository.MembershipRepository
	now         func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, memberships repository.MembershipRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, memberships: memberships, now: time.Now}
}

// Create crea un cliente en la organización del llamador.
func (uc *CustomerUseCase) Create(ctx context.Context, actor *entity.Membership, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	if err := access.Require(actor, rbac.ManageCustomers); err != nil {
		return nil, err
	}
	c := &entity.Customer{ID: uuid.New().String(), OrgID: actor.OrgID}
	if err := uc.apply(ctx, actor, c, in); err != nil {
		return nil, err
	}
	c.CreatedAt = c.UpdatedAt
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Get obtiene un cliente visible para el llamador.
func (uc *CustomerUseCase) Get(ctx context.Context, actor *entity.Membership, id string) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// List lista los clientes visibles, filtrados por texto (nombre, email, empresa,
// teléfono) y estado.
func (uc *CustomerUseCase) List(ctx context.Context, actor *entity.Membership, f dto.ListFilter) (*dto.CustomerListResponse, error) {
	if err := access.Require(actor, rbac.ManageCustomers); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		if !rbac.CanAccessCustomer(actor.Role, c.OwnerID, actor.UserID) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !search.Matches(f.Search, c.Name, c.Email, c.CompanyName, c.Phone) {
			continue
		}
		items = append(items, *toCustomerResponse(c))
	}
	pageItems, page := paginate(items, f.PageRequest)
	return &dto.CustomerListResponse{Items: pageItems, Page: page}, nil
}

// Update reemplaza los datos del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, actor *entity.Membership, id string, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, actor, c, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Delete elimina un cliente visible para el llamador.
func (uc *CustomerUseCase) Delete(ctx context.Context, actor *entity.Membership, id string) error {
	if _, err := uc.load(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// load aplica capacidad, organización y alcance por fila, en ese orden.
func (uc *CustomerUseCase) load(ctx context.Context, actor *entity.Membership, id string) (*entity.Customer, error) {
	if err := access.Require(actor, rbac.ManageCustomers); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.Row(actor, c.OrgID, c.OwnerID); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CustomerUseCase) apply(ctx context.Context, actor *entity.Membership, c *entity.Customer, in dto.CustomerRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrInvalidInput)
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = c.Status
	}
	if status == "" {
		status = entity.CustomerStatusLead
	}
	if !oneOf(status, entity.CustomerStatusLead, entity.CustomerStatusActive, entity.CustomerStatusInactive) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	owner, err := resolveAssignee(ctx, uc.memberships, actor, strings.TrimSpace(in.OwnerID), c.OwnerID)
	if err != nil {
		return err
	}

	c.Name = name
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.CompanyName = strings.TrimSpace(in.CompanyName)
	c.TaxID = strings.TrimSpace(in.TaxID)
	c.Address = strings.TrimSpace(in.Address)
	c.Notes = in.Notes
	c.Status = status
	c.OwnerID = owner
	c.UpdatedAt = uc.now()
	return nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:          c.ID,
		OrgID:       c.OrgID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		CompanyName: c.CompanyName,
		TaxID:       c.TaxID,
		Address:     c.Address,
		Status:      c.Status,
		Notes:       c.Notes,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
