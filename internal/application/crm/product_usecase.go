package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/search"
)

const defaultUnit = "unidad"

var maxTaxRate = decimal.NewFromInt(100)

// ProductUseCase catálogo de productos y servicios. Leen quienes venden o facturan;
// escribe solo manageFinancials.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un producto. El SKU es único por organización.
func (uc *ProductUseCase) Create(ctx context.Context, actor *entity.Membership, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("%w: sku y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if err := validatePrice(in.Price, in.TaxRate); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByOrgAndSKU(ctx, actor.OrgID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = defaultUnit
	}
	now := uc.now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		OrgID:       actor.OrgID,
		SKU:         sku,
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		TaxRate:     in.TaxRate,
		Unit:        unit,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Get obtiene un producto de la organización.
func (uc *ProductUseCase) Get(ctx context.Context, actor *entity.Membership, id string) (*dto.ProductResponse, error) {
	if err := access.RequireAny(actor, rbac.ManageCustomers, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List catálogo filtrado por texto (sku, nombre, descripción). Status "active" o
// "inactive" filtra por IsActive.
func (uc *ProductUseCase) List(ctx context.Context, actor *entity.Membership, f dto.ListFilter) (*dto.ProductListResponse, error) {
	if err := access.RequireAny(actor, rbac.ManageCustomers, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		if (f.Status == "active" && !p.IsActive) || (f.Status == "inactive" && p.IsActive) {
			continue
		}
		if !search.Matches(f.Search, p.SKU, p.Name, p.Description) {
			continue
		}
		items = append(items, *toProductResponse(p))
	}
	pageItems, page := paginate(items, f.PageRequest)
	return &dto.ProductListResponse{Items: pageItems, Page: page}, nil
}

// Update edición parcial. El SKU no cambia.
func (uc *ProductUseCase) Update(ctx context.Context, actor *entity.Membership, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, err
	}
	p, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	price, tax := p.Price, p.TaxRate
	if in.Price != nil {
		price = in.Price.Round(2)
	}
	if in.TaxRate != nil {
		tax = *in.TaxRate
	}
	if err := validatePrice(price, tax); err != nil {
		return nil, err
	}
	p.Price, p.TaxRate = price, tax
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		p.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(ctx context.Context, actor *entity.Membership, id string) error {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return err
	}
	if _, err := uc.load(ctx, actor, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) load(ctx context.Context, actor *entity.Membership, id string) (*entity.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.SameOrg(actor, p.OrgID); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePrice(price, tax decimal.Decimal) error {
	if price.IsNegative() || tax.IsNegative() || tax.GreaterThan(maxTaxRate) {
		return fmt.Errorf("%w: precio o tarifa de impuesto fuera de rango", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		OrgID:       p.OrgID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		TaxRate:     p.TaxRate,
		Unit:        p.Unit,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
