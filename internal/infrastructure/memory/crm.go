package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("customers.Create"); err != nil {
		return err
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("customers.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *customerRepo) ListByOrg(_ context.Context, orgID string) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("customers.ListByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Customer
	for _, c := range r.s.customers {
		if c.OrgID == orgID {
			cp := *c
			out = append(out, &cp)
		}
	}
	newest(out, func(c *entity.Customer) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *customerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("customers.Update"); err != nil {
		return err
	}
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *customerRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("customers.Delete"); err != nil {
		return err
	}
	// mismas reglas que las llaves foráneas de la BD
	for _, e := range r.s.estimates {
		if e.CustomerID == id {
			return fmt.Errorf("%w: el cliente tiene cotizaciones", domain.ErrConflict)
		}
	}
	for _, inv := range r.s.invoices {
		if inv.CustomerID == id {
			return fmt.Errorf("%w: el cliente tiene facturas", domain.ErrConflict)
		}
	}
	for _, p := range r.s.projects {
		if p.CustomerID == id {
			p.CustomerID = ""
		}
	}
	delete(r.s.customers, id)
	return nil
}

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(_ context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("projects.Create"); err != nil {
		return err
	}
	cp := *p
	r.s.projects[p.ID] = &cp
	return nil
}

func (r *projectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("projects.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *projectRepo) ListByOrg(_ context.Context, orgID string) ([]*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("projects.ListByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Project
	for _, p := range r.s.projects {
		if p.OrgID == orgID {
			cp := *p
			out = append(out, &cp)
		}
	}
	newest(out, func(p *entity.Project) time.Time { return p.CreatedAt })
	return out, nil
}

func (r *projectRepo) Update(_ context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("projects.Update"); err != nil {
		return err
	}
	if _, ok := r.s.projects[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.projects[p.ID] = &cp
	return nil
}

func (r *projectRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("projects.Delete"); err != nil {
		return err
	}
	delete(r.s.projects, id)
	return nil
}

type estimateRepo struct{ s *Store }

func cloneEstimate(e *entity.Estimate) *entity.Estimate {
	cp := *e
	cp.Items = append([]entity.LineItem(nil), e.Items...)
	return &cp
}

func (r *estimateRepo) Create(_ context.Context, e *entity.Estimate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("estimates.Create"); err != nil {
		return err
	}
	r.s.estimates[e.ID] = cloneEstimate(e)
	return nil
}

func (r *estimateRepo) GetByID(_ context.Context, id string) (*entity.Estimate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("estimates.GetByID"); err != nil {
		return nil, err
	}
	e, ok := r.s.estimates[id]
	if !ok {
		return nil, nil
	}
	return cloneEstimate(e), nil
}

func (r *estimateRepo) ListByOrg(_ context.Context, orgID string) ([]*entity.Estimate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("estimates.ListByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Estimate
	for _, e := range r.s.estimates {
		if e.OrgID == orgID {
			out = append(out, cloneEstimate(e))
		}
	}
	newest(out, func(e *entity.Estimate) time.Time { return e.CreatedAt })
	return out, nil
}

func (r *estimateRepo) Update(_ context.Context, e *entity.Estimate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("estimates.Update"); err != nil {
		return err
	}
	if _, ok := r.s.estimates[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.estimates[e.ID] = cloneEstimate(e)
	return nil
}

func (r *estimateRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("estimates.Delete"); err != nil {
		return err
	}
	delete(r.s.estimates, id)
	return nil
}

func (r *estimateRepo) NextNumber(_ context.Context, orgID, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("estimates.NextNumber"); err != nil {
		return "", err
	}
	return r.s.nextNumber(orgID, prefix), nil
}

type invoiceRepo struct{ s *Store }

func cloneInvoice(i *entity.Invoice) *entity.Invoice {
	cp := *i
	cp.Items = append([]entity.LineItem(nil), i.Items...)
	return &cp
}

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invoices.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.invoices {
		if existing.OrgID == inv.OrgID && existing.Number == inv.Number {
			return domain.ErrDuplicate
		}
	}
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invoices.GetByID"); err != nil {
		return nil, err
	}
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

func (r *invoiceRepo) ListByOrg(_ context.Context, orgID string) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invoices.ListByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.OrgID == orgID {
			out = append(out, cloneInvoice(inv))
		}
	}
	newest(out, func(i *entity.Invoice) time.Time { return i.CreatedAt })
	return out, nil
}

func (r *invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invoices.Update"); err != nil {
		return err
	}
	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *invoiceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invoices.Delete"); err != nil {
		return err
	}
	delete(r.s.invoices, id)
	return nil
}

func (r *invoiceRepo) NextNumber(_ context.Context, orgID, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invoices.NextNumber"); err != nil {
		return "", err
	}
	return r.s.nextNumber(orgID, prefix), nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("products.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.products {
		if existing.OrgID == p.OrgID && existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("products.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetByOrgAndSKU(_ context.Context, orgID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("products.GetByOrgAndSKU"); err != nil {
		return nil, err
	}
	for _, p := range r.s.products {
		if p.OrgID == orgID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) ListByOrg(_ context.Context, orgID string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("products.ListByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.OrgID == orgID {
			cp := *p
			out = append(out, &cp)
		}
	}
	newest(out, func(p *entity.Product) time.Time { return p.CreatedAt })
	return out, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("products.Update"); err != nil {
		return err
	}
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("products.Delete"); err != nil {
		return err
	}
	delete(r.s.products, id)
	return nil
}

type reportRepo struct{ s *Store }

func (r *reportRepo) CountCustomers(_ context.Context, orgID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("reports.CountCustomers"); err != nil {
		return 0, err
	}
	n := 0
	for _, c := range r.s.customers {
		if c.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (r *reportRepo) CountProjectsByStatus(_ context.Context, orgID string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("reports.CountProjectsByStatus"); err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, p := range r.s.projects {
		if p.OrgID == orgID {
			out[p.Status]++
		}
	}
	return out, nil
}

func (r *reportRepo) InvoiceTotalsByStatus(_ context.Context, orgID string) ([]repository.InvoiceAggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("reports.InvoiceTotalsByStatus"); err != nil {
		return nil, err
	}
	byStatus := map[string]*repository.InvoiceAggregate{}
	for _, inv := range r.s.invoices {
		if inv.OrgID != orgID {
			continue
		}
		agg, ok := byStatus[inv.Status]
		if !ok {
			agg = &repository.InvoiceAggregate{Status: inv.Status, Total: decimal.Zero}
			byStatus[inv.Status] = agg
		}
		agg.Count++
		agg.Total = agg.Total.Add(inv.Total)
	}
	out := make([]repository.InvoiceAggregate, 0, len(byStatus))
	for _, agg := range byStatus {
		out = append(out, *agg)
	}
	return out, nil
}

func (r *reportRepo) OverdueInvoices(_ context.Context, orgID string, before time.Time) (int, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("reports.OverdueInvoices"); err != nil {
		return 0, decimal.Zero, err
	}
	n, total := 0, decimal.Zero
	for _, inv := range r.s.invoices {
		if inv.OrgID == orgID && inv.Status == entity.InvoiceStatusSent && inv.DueDate.Before(before) {
			n++
			total = total.Add(inv.Total)
		}
	}
	return n, total, nil
}

func (r *reportRepo) PaidBetween(_ context.Context, orgID string, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("reports.PaidBetween"); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, inv := range r.s.invoices {
		if inv.OrgID != orgID || inv.Status != entity.InvoiceStatusPaid || inv.PaidAt == nil {
			continue
		}
		if !inv.PaidAt.Before(from) && inv.PaidAt.Before(to) {
			total = total.Add(inv.Total)
		}
	}
	return total, nil
}

func (r *reportRepo) CountEstimatesByStatus(_ context.Context, orgID, status string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("reports.CountEstimatesByStatus"); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range r.s.estimates {
		if e.OrgID == orgID && e.Status == status {
			n++
		}
	}
	return n, nil
}

// nextNumber consecutivo por organización y prefijo. Requiere s.mu tomado.
func (s *Store) nextNumber(orgID, prefix string) string {
	key := orgID + "/" + prefix
	s.documentSeq[key]++
	return fmt.Sprintf("%s-%05d", prefix, s.documentSeq[key])
}

var (
	_ repository.CustomerRepository = (*customerRepo)(nil)
	_ repository.ProjectRepository  = (*projectRepo)(nil)
	_ repository.EstimateRepository = (*estimateRepo)(nil)
	_ repository.InvoiceRepository  = (*invoiceRepo)(nil)
	_ repository.ProductRepository  = (*productRepo)(nil)
	_ repository.ReportRepository   = (*reportRepo)(nil)
)
