package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/crm-api/internal/application/crm"
	"github.com/jhoicas/crm-api/internal/application/organization"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Ensure TxRunner implements organization.InviteTxRunner and crm.DocumentTxRunner.
var _ organization.InviteTxRunner = (*TxRunner)(nil)
var _ crm.DocumentTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInvite acepta una invitación: marcar como usada y crear la membresía van juntas.
func (r *TxRunner) RunInvite(ctx context.Context, fn func(
	invites repository.InviteRepository,
	memberships repository.MembershipRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewInviteRepository(tx), NewMembershipRepository(tx))
	})
}

// RunDocuments convierte una cotización en factura: consecutivo, factura y enlace en una tx.
func (r *TxRunner) RunDocuments(ctx context.Context, fn func(
	estimates repository.EstimateRepository,
	invoices repository.InvoiceRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewEstimateRepository(tx), NewInvoiceRepository(tx))
	})
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
