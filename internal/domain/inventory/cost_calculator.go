package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual int, costoActual decimal.Decimal, cantEntrada int, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual + cantEntrada
	if sum <= 0 {
		return decimal.Zero
	}
	if stockActual < 0 {
		stockActual = 0
	}
	num := decimal.NewFromInt(int64(stockActual)).Mul(costoActual).
		Add(decimal.NewFromInt(int64(cantEntrada)).Mul(costoEntrada))
	return num.Div(decimal.NewFromInt(int64(stockActual + cantEntrada))).Round(4)
}

// SuggestedReorder cantidad sugerida para volver a 1.5 veces el mínimo.
func SuggestedReorder(currentStock, minimumStock int) int {
	ideal := decimal.NewFromInt(int64(minimumStock)).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
	qty := int(ideal) - currentStock
	if qty < 0 {
		return 0
	}
	return qty
}
