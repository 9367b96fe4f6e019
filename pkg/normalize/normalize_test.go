package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-electrico/pkg/normalize"
)

func TestSKU(t *testing.T) {
	assert.Equal(t, "CAB-THHN-12", normalize.SKU("  cab-thhn 12 "))
	assert.Equal(t, "BRK-20A", normalize.SKU("ｂｒｋ-20a"), "NFKC convierte ancho completo")
}

func TestTaxID(t *testing.T) {
	assert.Equal(t, "9001234567", normalize.TaxID("900.123.456-7"))
	assert.Equal(t, "", normalize.TaxID(" - "))
}

func TestNITCheckDigit(t *testing.T) {
	// 900123456: suma ponderada 586 -> 586 % 11 = 3 -> 11-3 = 8
	d, err := normalize.NITCheckDigit("900123456")
	assert.NoError(t, err)
	assert.Equal(t, byte('8'), d)

	assert.True(t, normalize.ValidNIT("900.123.456-8"))
	assert.False(t, normalize.ValidNIT("900.123.456-1"))
	assert.True(t, normalize.ValidNIT("1020304050607"), "largos distintos de 10 no se verifican")

	_, err = normalize.NITCheckDigit("123")
	assert.Error(t, err)
}
