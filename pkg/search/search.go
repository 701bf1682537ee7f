// Package search normaliza texto para los filtros de listado: minúsculas y sin
// tildes, de modo que "José" coincide con "jose".
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize quita marcas diacríticas, pliega mayúsculas y recorta espacios.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(cases.Fold().String(out))
}

// Matches informa si query (normalizada) aparece en alguno de los campos.
// Una consulta vacía coincide con todo.
func Matches(query string, fields ...string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Normalize(f), q) {
			return true
		}
	}
	return false
}

// Title capitaliza un nombre para mostrarlo ("ana maría" → "Ana María").
func Title(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}
