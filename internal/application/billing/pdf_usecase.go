// Package billing genera la representación en PDF de cotizaciones y facturas.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/crm-api/internal/application/access"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// PDFUseCase genera el PDF de una cotización o factura de la organización del llamador.
type PDFUseCase struct {
	estimates repository.EstimateRepository
	invoices  repository.InvoiceRepository
	orgs      repository.OrganizationRepository
	customers repository.CustomerRepository
	generator PDFGenerator
	now       func() time.Time
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	estimates repository.EstimateRepository,
	invoices repository.InvoiceRepository,
	orgs repository.OrganizationRepository,
	customers repository.CustomerRepository,
	generator PDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		estimates: estimates,
		invoices:  invoices,
		orgs:      orgs,
		customers: customers,
		generator: generator,
		now:       time.Now,
	}
}

// InvoicePDF devuelve (pdfBytes, filename).
//
// Retorna:
//   - domain.ErrForbidden  sin manageFinancials o si la factura es de otra organización.
//   - domain.ErrNotFound   si la factura no existe.
func (uc *PDFUseCase) InvoicePDF(ctx context.Context, actor *entity.Membership, id string) ([]byte, string, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, "", err
	}
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if err := access.SameOrg(actor, inv.OrgID); err != nil {
		return nil, "", err
	}
	due := inv.DueDate
	doc := &DocumentForPDF{
		Kind:      KindInvoice,
		Number:    inv.Number,
		Status:    inv.EffectiveStatus(uc.now()),
		IssueDate: inv.IssueDate,
		DueDate:   &due,
		Items:     inv.Items,
		Subtotal:  inv.Subtotal,
		TaxTotal:  inv.TaxTotal,
		Total:     inv.Total,
		Notes:     inv.Notes,
	}
	return uc.render(ctx, doc, inv.OrgID, inv.CustomerID, "factura")
}

// EstimatePDF devuelve (pdfBytes, filename) de una cotización.
func (uc *PDFUseCase) EstimatePDF(ctx context.Context, actor *entity.Membership, id string) ([]byte, string, error) {
	if err := access.Require(actor, rbac.ManageFinancials); err != nil {
		return nil, "", err
	}
	e, err := uc.estimates.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cotización: %w", err)
	}
	if e == nil {
		return nil, "", domain.ErrNotFound
	}
	if err := access.SameOrg(actor, e.OrgID); err != nil {
		return nil, "", err
	}
	doc := &DocumentForPDF{
		Kind:      KindEstimate,
		Number:    e.Number,
		Status:    e.Status,
		IssueDate: e.IssueDate,
		DueDate:   e.ValidUntil,
		Items:     e.Items,
		Subtotal:  e.Subtotal,
		TaxTotal:  e.TaxTotal,
		Total:     e.Total,
		Notes:     e.Notes,
	}
	return uc.render(ctx, doc, e.OrgID, e.CustomerID, "cotizacion")
}

// render completa emisor y cliente y genera el PDF. Un cliente borrado no impide imprimir.
func (uc *PDFUseCase) render(ctx context.Context, doc *DocumentForPDF, orgID, customerID, prefix string) ([]byte, string, error) {
	org, err := uc.orgs.GetByID(ctx, orgID)
	if err != nil || org == nil {
		return nil, "", fmt.Errorf("pdf: obtener organización: %w", err)
	}
	doc.Issuer = PartyForPDF{Name: org.Name}

	customer, err := uc.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if customer != nil {
		doc.Customer = PartyForPDF{
			Name:    customer.Name,
			TaxID:   customer.TaxID,
			Email:   customer.Email,
			Phone:   customer.Phone,
			Address: customer.Address,
		}
	} else {
		doc.Customer = PartyForPDF{Name: "Cliente " + customerID}
	}

	pdfBytes, err := uc.generator.Generate(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("%s_%s.pdf", prefix, doc.Number), nil
}
