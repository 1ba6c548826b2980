// Package rules holds the business rules shared by every read and write
// path: derived fields, bulk pricing tiers and SKU synthesis. Nothing here
// touches storage.
package rules

import (
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/shopspring/decimal"
)

// StockStatus classifies a stock level. An unset or zero maximum never
// makes an item overstocked.
func StockStatus(currentStock, minimumStock float64, maximumStock *float64) model.StockStatus {
	switch {
	case currentStock <= 0:
		return model.StockOutOfStock
	case currentStock <= minimumStock:
		return model.StockLow
	case maximumStock != nil && *maximumStock > 0 && currentStock >= *maximumStock:
		return model.StockOverstocked
	default:
		return model.StockNormal
	}
}

// ProfitMargin is the markup over cost as a percentage rounded to two
// decimals. A zero cost yields 0 whatever the selling price.
func ProfitMargin(costPrice, sellingPrice float64) float64 {
	if costPrice == 0 {
		return 0
	}
	cost := decimal.NewFromFloat(costPrice)
	margin := decimal.NewFromFloat(sellingPrice).Sub(cost).Div(cost).Mul(decimal.NewFromInt(100))
	return margin.Round(2).InexactFloat64()
}
