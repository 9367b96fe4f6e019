// Package normalize limpia códigos que llegan desde formularios y hojas de cálculo
// (SKU, NIT) para que las restricciones de unicidad de la base no dependan de
// mayúsculas, anchos de carácter o separadores.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// SKU aplica NFKC, mayúsculas y reemplaza espacios internos por guiones.
// "  cab-thhn 12 " -> "CAB-THHN-12"
func SKU(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	s = upper.String(s)
	return strings.Join(strings.Fields(s), "-")
}

// TaxID deja solo dígitos y letras (quita puntos, guiones y espacios).
func TaxID(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// pesos para el dígito de verificación del NIT (módulo 11), aplicados a los 9 primeros dígitos.
var nitWeights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// NITCheckDigit calcula el dígito de verificación para los 9 primeros dígitos del NIT.
func NITCheckDigit(taxID string) (byte, error) {
	digits := extractDigits(taxID)
	if len(digits) < 9 {
		return 0, fmt.Errorf("normalize: se requieren al menos 9 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:9] {
		sum += int(d-'0') * nitWeights[i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder), nil
	}
	return byte('0' + (11 - remainder)), nil
}

// ValidNIT valida un NIT de 10 dígitos (9 + verificación). Otros largos
// (cédulas) se aceptan sin verificación.
func ValidNIT(taxID string) bool {
	digits := extractDigits(taxID)
	if len(digits) != 10 {
		return true
	}
	expected, err := NITCheckDigit(taxID)
	if err != nil {
		return false
	}
	return digits[9] == expected
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, byte(r))
		}
	}
	return out
}
