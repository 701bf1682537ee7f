package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/rbac"
	"github.com/jhoicas/crm-api/internal/infrastructure/memory"
)

func member(role rbac.Role) *entity.Membership {
	return &entity.Membership{ID: "m-1", OrgID: "org-a", UserID: "u-1", Role: role, IsActive: true}
}

func invoice(t *testing.T, s *memory.Store, id, orgID, status, total string, due time.Time, paidAt *time.Time) {
	t.Helper()
	require.NoError(t, s.Invoices().Create(context.Background(), &entity.Invoice{
		ID: id, OrgID: orgID, Number: id, Status: status, DueDate: due, PaidAt: paidAt,
		Total: decimal.RequireFromString(total), CreatedAt: due,
	}))
}

func TestGetSummary(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Customers().Create(ctx, &entity.Customer{ID: "c1", OrgID: "org-a", Name: "A"}))
	require.NoError(t, s.Customers().Create(ctx, &entity.Customer{ID: "c2", OrgID: "org-a", Name: "B"}))
	require.NoError(t, s.Customers().Create(ctx, &entity.Customer{ID: "c3", OrgID: "org-b", Name: "C"}))
	require.NoError(t, s.Projects().Create(ctx, &entity.Project{ID: "p1", OrgID: "org-a", Status: entity.ProjectStatusActive}))
	require.NoError(t, s.Projects().Create(ctx, &entity.Project{ID: "p2", OrgID: "org-a", Status: entity.ProjectStatusActive}))
	require.NoError(t, s.Estimates().Create(ctx, &entity.Estimate{ID: "e1", OrgID: "org-a", Status: entity.EstimateStatusSent}))
	require.NoError(t, s.Estimates().Create(ctx, &entity.Estimate{ID: "e2", OrgID: "org-a", Status: entity.EstimateStatusDraft}))

	invoice(t, s, "i1", "org-a", entity.InvoiceStatusPaid, "300", thisMonth, &thisMonth)
	invoice(t, s, "i2", "org-a", entity.InvoiceStatusPaid, "200", lastMonth, &lastMonth)
	invoice(t, s, "i3", "org-a", entity.InvoiceStatusSent, "100", now.AddDate(0, 0, -2), nil) // vencida
	invoice(t, s, "i4", "org-a", entity.InvoiceStatusSent, "50", now.AddDate(0, 0, 5), nil)
	invoice(t, s, "i5", "org-b", entity.InvoiceStatusPaid, "999", thisMonth, &thisMonth)

	uc := NewSummaryUseCase(s.Reports())
	uc.now = func() time.Time { return now }

	got, err := uc.GetSummary(ctx, member(rbac.RoleViewer))
	require.NoError(t, err)

	assert.Equal(t, 2, got.Customers)
	assert.Equal(t, map[string]int{entity.ProjectStatusActive: 2}, got.ProjectsByStatus)
	assert.Equal(t, 1, got.PendingEstimates)
	assert.Equal(t, "500", got.PaidTotal.String())
	assert.Equal(t, "150", got.OutstandingTotal.String())
	assert.Equal(t, 1, got.OverdueCount)
	assert.Equal(t, "100", got.OverdueTotal.String())
	assert.Equal(t, "300", got.RevenueThisMonth.String())
	assert.Equal(t, "200", got.RevenueLastMonth.String())
	assert.Equal(t, "50", got.RevenueGrowthPct.String())
	assert.Equal(t, "Febrero 2026", got.DateLabel)
}

func TestGetSummary_SinPermiso(t *testing.T) {
	s := memory.NewStore()
	uc := NewSummaryUseCase(s.Reports())

	_, err := uc.GetSummary(context.Background(), member(rbac.RoleEmployee))
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, 0, s.TotalCalls())
}

func TestGetSummary_ErrorDeConsulta(t *testing.T) {
	s := memory.NewStore()
	s.FailOn("reports.OverdueInvoices", errors.New("db caída"))
	uc := NewSummaryUseCase(s.Reports())

	_, err := uc.GetSummary(context.Background(), member(rbac.RoleOwner))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vencidas")
}

func TestGrowth(t *testing.T) {
	assert.True(t, growth(decimal.Zero, decimal.Zero).IsZero())
	assert.Equal(t, "100", growth(decimal.NewFromInt(5), decimal.Zero).String())
	assert.Equal(t, "-25", growth(decimal.NewFromInt(75), decimal.NewFromInt(100)).String())
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Diciembre 2025", monthLabel(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
