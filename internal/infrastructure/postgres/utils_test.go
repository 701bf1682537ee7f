package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClasificacionDeErroresPg(t *testing.T) {
	fk := fmt.Errorf("delete customer: %w", &pgconn.PgError{Code: "23503"})
	uniq := &pgconn.PgError{Code: "23505"}

	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(uniq))
	assert.False(t, isForeignKeyViolation(errors.New("23503 en el texto no cuenta")))

	assert.True(t, isUniqueViolation(uniq))
	assert.False(t, isUniqueViolation(fk))
}
