package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/crm-api/pkg/search"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jose nunez", search.Normalize("  JOSÉ Nuñez "))
	assert.Equal(t, "sao paulo", search.Normalize("São Paulo"))
}

func TestMatches(t *testing.T) {
	assert.True(t, search.Matches("", "cualquier cosa"))
	assert.True(t, search.Matches("jose", "José Pérez", "jose@example.com"))
	assert.True(t, search.Matches("ACME", "", "acme s.a.s"))
	assert.False(t, search.Matches("globex", "José Pérez", "acme"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Ana María", search.Title(" ana maría "))
}
