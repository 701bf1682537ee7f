// Package memory implementa los puertos de persistencia en memoria. Lo usan las
// pruebas de casos de uso y de HTTP; cuenta llamadas y permite inyectar errores.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Store guarda todas las tablas en mapas protegidos por un único mutex.
type Store struct {
	mu sync.RWMutex

	orgs        map[string]*entity.Organization
	memberships map[string]*entity.Membership
	invites     map[string]*entity.Invite
	profiles    map[string]*entity.Profile
	customers   map[string]*entity.Customer
	projects    map[string]*entity.Project
	estimates   map[string]*entity.Estimate
	invoices    map[string]*entity.Invoice
	products    map[string]*entity.Product
	documentSeq map[string]int

	calls map[string]int
	fail  map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		orgs:        map[string]*entity.Organization{},
		memberships: map[string]*entity.Membership{},
		invites:     map[string]*entity.Invite{},
		profiles:    map[string]*entity.Profile{},
		customers:   map[string]*entity.Customer{},
		projects:    map[string]*entity.Project{},
		estimates:   map[string]*entity.Estimate{},
		invoices:    map[string]*entity.Invoice{},
		products:    map[string]*entity.Product{},
		documentSeq: map[string]int{},
		calls:       map[string]int{},
		fail:        map[string]error{},
	}
}

// FailOn hace que la operación op (ej. "memberships.Create") devuelva err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// Calls número de invocaciones de op.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// TotalCalls número de invocaciones de cualquier operación.
func (s *Store) TotalCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// track registra la llamada y devuelve el error inyectado, si hay. Requiere s.mu tomado.
func (s *Store) track(op string) error {
	s.calls[op]++
	return s.fail[op]
}

// Organizations puerto de organizaciones.
func (s *Store) Organizations() repository.OrganizationRepository { return &orgRepo{s} }

// Memberships puerto de membresías.
func (s *Store) Memberships() repository.MembershipRepository { return &membershipRepo{s} }

// Invites puerto de invitaciones.
func (s *Store) Invites() repository.InviteRepository { return &inviteRepo{s} }

// Profiles puerto de perfiles.
func (s *Store) Profiles() repository.ProfileRepository { return &profileRepo{s} }

// Customers puerto de clientes.
func (s *Store) Customers() repository.CustomerRepository { return &customerRepo{s} }

// Projects puerto de proyectos.
func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s} }

// Estimates puerto de cotizaciones.
func (s *Store) Estimates() repository.EstimateRepository { return &estimateRepo{s} }

// Invoices puerto de facturas.
func (s *Store) Invoices() repository.InvoiceRepository { return &invoiceRepo{s} }

// Products puerto de productos.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }

// Reports puerto de reportes.
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{s} }

// RunInvite ejecuta fn con los repos del store. No hay rollback: si fn falla a mitad,
// los cambios previos quedan; las pruebas que lo necesiten usan FailOn antes de la primera escritura.
func (s *Store) RunInvite(ctx context.Context, fn func(invites repository.InviteRepository, memberships repository.MembershipRepository) error) error {
	return fn(s.Invites(), s.Memberships())
}

// RunDocuments ejecuta fn con los repos de cotizaciones y facturas, sin rollback.
func (s *Store) RunDocuments(ctx context.Context, fn func(estimates repository.EstimateRepository, invoices repository.InvoiceRepository) error) error {
	return fn(s.Estimates(), s.Invoices())
}

func newest[T any](items []*T, created func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}
