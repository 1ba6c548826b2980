package rules

import (
	"testing"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		minimum  float64
		maximum  *float64
		expected model.StockStatus
	}{
		{"zero stock", 0, 10, nil, model.StockOutOfStock},
		{"zero stock zero minimum", 0, 0, nil, model.StockOutOfStock},
		{"negative stock", -3, 0, ptr(5), model.StockOutOfStock},
		{"at minimum", 10, 10, nil, model.StockLow},
		{"below minimum", 5, 10, ptr(100), model.StockLow},
		{"low wins over overstocked", 5, 10, ptr(4), model.StockLow},
		{"at maximum", 100, 10, ptr(100), model.StockOverstocked},
		{"above maximum", 150, 10, ptr(100), model.StockOverstocked},
		{"maximum unset", 1000, 10, nil, model.StockNormal},
		{"zero maximum counts as unset", 50, 10, ptr(0), model.StockNormal},
		{"between thresholds", 50, 10, ptr(100), model.StockNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StockStatus(tt.current, tt.minimum, tt.maximum))
		})
	}
}

func TestProfitMargin(t *testing.T) {
	tests := []struct {
		name     string
		cost     float64
		selling  float64
		expected float64
	}{
		{"fifty percent", 100, 150, 50.00},
		{"seeds", 2, 3, 50.00},
		{"zero cost hides margin", 0, 99, 0},
		{"zero cost zero price", 0, 0, 0},
		{"loss", 10, 7.5, -25.00},
		{"rounds to two decimals", 3, 4, 33.33},
		{"rounds half up", 8, 9.0001, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProfitMargin(tt.cost, tt.selling))
		})
	}
}
