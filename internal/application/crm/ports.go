package crm

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// DocumentTxRunner ejecuta en una transacción la conversión de cotización a factura.
type DocumentTxRunner interface {
	RunDocuments(ctx context.Context, fn func(
		estimates repository.EstimateRepository,
		invoices repository.InvoiceRepository,
	) error) error
}
