package postgres

import (
	"context"
	"fmt"
)

// nextDocumentNumber incrementa el consecutivo (org, prefijo) con un upsert atómico y
// devuelve el número formateado, ej. "FAC-00042". Dentro de una tx la fila queda
// bloqueada hasta el commit, así que dos conversiones concurrentes no comparten número.
func nextDocumentNumber(ctx context.Context, q Querier, orgID, prefix string) (string, error) {
	query := `
		INSERT INTO document_sequences (org_id, prefix, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (org_id, prefix)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := q.QueryRow(ctx, query, orgID, prefix).Scan(&n); err != nil {
		return "", fmt.Errorf("next document number %s: %w", prefix, err)
	}
	return formatDocumentNumber(prefix, n), nil
}

func formatDocumentNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s-%05d", prefix, n)
}
