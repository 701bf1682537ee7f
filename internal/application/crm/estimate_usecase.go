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

const (
	estimatePrefix = "COT"
	invoicePrefix  = "FAC"
	defaultDueDays = 30
)

// EstimateUseCase cotizaciones (manageFinancials) y su conversión a factura.
type EstimateUseCase struct {
	repo      repository.EstimateRepository
	customers repository.CustomerRepository
	projects  repository.ProjectRepository
	products  repository.ProductRepository
	tx        DocumentTxRunner
	log       zerolog.Logger
	now       func() time.Time
}

// NewEstimateUseCase construye el caso de uso.
func NewEstimateUseCase(
	repo repository.EstimateRepository,
	customers repository.CustomerRepository,
	projects repository.ProjectRepository,
	products repository.ProductRepository,
	tx DocumentTxRunner,
	log zerolog.Logger,
) *EstimateUseCase {
	return &EstimateUseCase{
		repo:      repo,
		customers: customers,
		projects:  projects,
		products:  products,
		tx:        tx,
		log:       log,
		now:       time.Now,
	}
}

// Create crea una cotización; sin número se asigna el consecutivo COT-nnnnn.
func (uc *EstimateUseCase) Create(ctx context.Context, actor *entity.Membership, in dto.EstimateRequest) (*dto.EstimateResponse, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	now := uc.now()
	e := &entity.Estimate{
		ID:        uuid.New().String(),
		OrgID:     actor.OrgID,
		OwnerID:   actor.UserID,
		IssueDate: now,
		CreatedAt: now,
	}
	if err := uc.apply(ctx, actor, e, in); err != nil {
		return nil, err
	}
	if e.Number == "" {
		number, err := uc.repo.NextNumber(ctx, actor.OrgID, estimatePrefix)
		if err != nil {
			return nil, err
		}
		e.Number = number
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return toEstimateResponse(e), nil
}

// Get obtiene una cotización de la organización.
func (uc *EstimateUseCase) Get(ctx context.Context, actor *entity.Membership, id string) (*dto.EstimateResponse, error) {
	e, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toEstimateResponse(e), nil
}

// List cotizaciones filtradas por número/notas y estado.
func (uc *EstimateUseCase) List(ctx context.Context, actor *entity.Membership, f dto.ListFilter) (*dto.EstimateListResponse, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EstimateResponse, 0, len(list))
	for _, e := range list {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if !search.Matches(f.Search, e.Number, e.Notes) {
			continue
		}
		items = append(items, *toEstimateResponse(e))
	}
	pageItems, page := paginate(items, f.PageRequest)
	return &dto.EstimateListResponse{Items: pageItems, Page: page}, nil
}

// Update reemplaza la cotización. Una cotización ya convertida no se modifica.
func (uc *EstimateUseCase) Update(ctx context.Context, actor *entity.Membership, id string, in dto.EstimateRequest) (*dto.EstimateResponse, error) {
	e, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.InvoiceID != "" {
		return nil, fmt.Errorf("%w: la cotización ya fue facturada", domain.ErrConflict)
	}
	if err := uc.apply(ctx, actor, e, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return toEstimateResponse(e), nil
}

// Delete elimina una cotización no convertida.
func (uc *EstimateUseCase) Delete(ctx context.Context, actor *entity.Membership, id string) error {
	e, err := uc.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if e.InvoiceID != "" {
		return fmt.Errorf("%w: la cotización ya fue facturada", domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}

// Convert crea una factura borrador con las líneas de una cotización aceptada y las
// enlaza en la misma transacción.
func (uc *EstimateUseCase) Convert(ctx context.Context, actor *entity.Membership, id string, in dto.ConvertEstimateRequest) (*dto.InvoiceResponse, error) {
	e, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if e.Status != entity.EstimateStatusAccepted {
		return nil, fmt.Errorf("%w: solo se facturan cotizaciones aceptadas (estado %s)", domain.ErrConflict, e.Status)
	}
	if e.InvoiceID != "" {
		return nil, fmt.Errorf("%w: la cotización ya fue facturada", domain.ErrConflict)
	}

	now := uc.now()
	due := now.AddDate(0, 0, defaultDueDays)
	if in.DueDate != nil {
		if in.DueDate.Before(startOfDay(now)) {
			return nil, fmt.Errorf("%w: la fecha de vencimiento ya pasó", domain.ErrInvalidInput)
		}
		due = *in.DueDate
	}
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		OrgID:      e.OrgID,
		CustomerID: e.CustomerID,
		ProjectID:  e.ProjectID,
		EstimateID: e.ID,
		Status:     entity.InvoiceStatusDraft,
		IssueDate:  now,
		DueDate:    due,
		Items:      append([]entity.LineItem(nil), e.Items...),
		Notes:      e.Notes,
		OwnerID:    actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	inv.Recalculate()

	err = uc.tx.RunDocuments(ctx, func(estimates repository.EstimateRepository, invoices repository.InvoiceRepository) error {
		number, err := invoices.NextNumber(ctx, e.OrgID, invoicePrefix)
		if err != nil {
			return err
		}
		inv.Number = number
		if err := invoices.Create(ctx, inv); err != nil {
			return err
		}
		e.InvoiceID = inv.ID
		e.UpdatedAt = now
		return estimates.Update(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("org_id", e.OrgID).Str("estimate_id", e.ID).Str("invoice_id", inv.ID).Msg("cotización facturada")
	return toInvoiceResponse(inv, now), nil
}

func (uc *EstimateUseCase) load(ctx context.Context, actor *entity.Membership, id string) (*entity.Estimate, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.SameOrg(actor, e.OrgID); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *EstimateUseCase) apply(ctx context.Context, actor *entity.Membership, e *entity.Estimate, in dto.EstimateRequest) error {
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = e.Status
	}
	if status == "" {
		status = entity.EstimateStatusDraft
	}
	if !oneOf(status, entity.EstimateStatusDraft, entity.EstimateStatusSent, entity.EstimateStatusAccepted, entity.EstimateStatusDeclined) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
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
		e.IssueDate = *in.IssueDate
	}
	if in.ValidUntil != nil && in.ValidUntil.Before(e.IssueDate) {
		return fmt.Errorf("%w: valid_until es anterior a la fecha de emisión", domain.ErrInvalidInput)
	}

	e.CustomerID = customerID
	e.ProjectID = projectID
	if n := strings.TrimSpace(in.Number); n != "" {
		e.Number = n
	}
	e.Status = status
	e.ValidUntil = in.ValidUntil
	e.Items = items
	e.Notes = in.Notes
	e.UpdatedAt = uc.now()
	e.Recalculate()
	return nil
}

func toEstimateResponse(e *entity.Estimate) *dto.EstimateResponse {
	return &dto.EstimateResponse{
		ID:         e.ID,
		OrgID:      e.OrgID,
		CustomerID: e.CustomerID,
		ProjectID:  e.ProjectID,
		Number:     e.Number,
		Status:     e.Status,
		IssueDate:  e.IssueDate,
		ValidUntil: e.ValidUntil,
		Items:      toLineDTOs(e.Items),
		Subtotal:   e.Subtotal,
		TaxTotal:   e.TaxTotal,
		Total:      e.Total,
		Notes:      e.Notes,
		InvoiceID:  e.InvoiceID,
		OwnerID:    e.OwnerID,
		CreatedAt:  e.CreatedAt,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
