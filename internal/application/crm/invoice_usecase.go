package crm

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
	"github.com/jhoicas/crm-api/pkg/search"
)

// InvoiceUseCase facturas (manageFinancials). El estado "overdue" se calcula al leer.
type InvoiceUseCase struct {
	repo      repository.InvoiceRepository
	customers repository.CustomerRepository
	projects  repository.ProjectRepository
	products  repository.ProductRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	repo repository.InvoiceRepository,
	customers repository.CustomerRepository,
	projects repository.ProjectRepository,
	products repository.ProductRepository,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		repo:      repo,
		customers: customers,
		projects:  projects,
		products:  products,
		log:       log,
		now:       time.Now,
	}
}

// Create crea una factura; sin número se asigna el consecutivo FAC-nnnnn y sin
// vencimiento se usan 30 días desde la emisión.
func (uc *InvoiceUseCase) Create(ctx context.Context, actor *entity.Membership, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	now := uc.now()
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		OrgID:     actor.OrgID,
		OwnerID:   actor.UserID,
		IssueDate: now,
		CreatedAt: now,
	}
	if err := uc.apply(ctx, actor, inv, in); err != nil {
		return nil, err
	}
	if inv.Number == "" {
		number, err := uc.repo.NextNumber(ctx, actor.OrgID, invoicePrefix)
		if err != nil {
			return nil, err
		}
		inv.Number = number
	}
	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, uc.now()), nil
}

// Get obtiene una factura de la organización.
func (uc *InvoiceUseCase) Get(ctx context.Context, actor *entity.Membership, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, uc.now()), nil
}

// List facturas filtradas por número/notas y estado visible (incluye "overdue").
func (uc *InvoiceUseCase) List(ctx context.Context, actor *entity.Membership, f dto.ListFilter) (*dto.InvoiceListResponse, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		if f.Status != "" && inv.EffectiveStatus(now) != f.Status {
			continue
		}
		if !search.Matches(f.Search, inv.Number, inv.Notes) {
			continue
		}
		items = append(items, *toInvoiceResponse(inv, now))
	}
	pageItems, page := paginate(items, f.PageRequest)
	return &dto.InvoiceListResponse{Items: pageItems, Page: page}, nil
}

// Update reemplaza una factura que no esté pagada ni anulada.
func (uc *InvoiceUseCase) Update(ctx context.Context, actor *entity.Membership, id string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == entity.InvoiceStatusPaid || inv.Status == entity.InvoiceStatusCancelled {
		return nil, fmt.Errorf("%w: la factura está %s", domain.ErrConflict, inv.Status)
	}
	if err := uc.apply(ctx, actor, inv, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, uc.now()), nil
}

// Pay marca como pagada una factura enviada (vencida o no).
func (uc *InvoiceUseCase) Pay(ctx context.Context, actor *entity.Membership, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InvoiceStatusSent {
		return nil, fmt.Errorf("%w: solo se pagan facturas enviadas (estado %s)", domain.ErrConflict, inv.Status)
	}
	now := uc.now()
	inv.Status = entity.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	uc.log.Info().Str("org_id", inv.OrgID).Str("invoice_id", inv.ID).Str("total", inv.Total.String()).Msg("factura pagada")
	return toInvoiceResponse(inv, now), nil
}

// Delete elimina una factura en borrador.
func (uc *InvoiceUseCase) Delete(ctx context.Context, actor *entity.Membership, id string) error {
	inv, err := uc.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if inv.Status != entity.InvoiceStatusDraft {
		return fmt.Errorf("%w: solo se eliminan borradores; anule la factura", domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *InvoiceUseCase) load(ctx context.Context, actor *entity.Membership, id string) (*entity.Invoice, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.SameOrg(actor, inv.OrgID); err != nil {
		return nil, err
	}
	return inv, nil
}

// apply valida y copia los campos editables. "paid" solo se alcanza con Pay.
func (uc *InvoiceUseCase) apply(ctx context.Context, actor *entity.Membership, inv *entity.Invoice, in dto.InvoiceRequest) error {
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = inv.Status
	}
	if status == "" {
		status = entity.InvoiceStatusDraft
	}
	if !oneOf(status, entity.InvoiceStatusDraft, entity.InvoiceStatusSent, entity.InvoiceStatusCancelled) {
		return fmt.Errorf("%w: estado %q no se asigna directamente", domain.ErrInvalidInput, in.Status)
	}
	customerID := strings.TrimSpace(in.CustomerID)
	if _, err := customerInOrg(ctx, uc.customers, actor.OrgID, customerID); err != nil {
		return err
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if err := projectInOrg(ctx, uc.projects, actor.OrgID, projectID); err != nil {
		return err
	}
	items, err := buildLines(ctx, uc.products, actor.OrgID, in.Items)
	if err != nil {
		return err
	}
	if in.IssueDate != nil {
		inv.IssueDate = *in.IssueDate
	}
	switch {
	case in.DueDate != nil:
		inv.DueDate = *in.DueDate
	case inv.DueDate.IsZero():
		inv.DueDate = inv.IssueDate.AddDate(0, 0, defaultDueDays)
	}
	if inv.DueDate.Before(startOfDay(inv.IssueDate)) {
		return fmt.Errorf("%w: el vencimiento es anterior a la emisión", domain.ErrInvalidInput)
	}

	inv.CustomerID = customerID
	inv.ProjectID = projectID
	if n := strings.TrimSpace(in.Number); n != "" {
		inv.Number = n
	}
	inv.Status = status
	inv.Items = items
	inv.Notes = in.Notes
	inv.UpdatedAt = uc.now()
	inv.Recalculate()
	return nil
}

func toInvoiceResponse(inv *entity.Invoice, now time.Time) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:         inv.ID,
		OrgID:      inv.OrgID,
		CustomerID: inv.CustomerID,
		ProjectID:  inv.ProjectID,
		EstimateID: inv.EstimateID,
		Number:     inv.Number,
		Status:     inv.EffectiveStatus(now),
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		PaidAt:     inv.PaidAt,
		Items:      toLineDTOs(inv.Items),
		Subtotal:   inv.Subtotal,
		TaxTotal:   inv.TaxTotal,
		Total:      inv.Total,
		Notes:      inv.Notes,
		OwnerID:    inv.OwnerID,
		CreatedAt:  inv.CreatedAt,
	}
}
