package rules

import (
	"testing"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantities(tiers model.BulkTiers) []int {
	out := make([]int, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, t.Quantity)
	}
	return out
}

func TestCanonicalBulkTiersSorts(t *testing.T) {
	input := []model.BulkTier{
		{Quantity: 10, Price: 9},
		{Quantity: 5, Price: 9.5},
		{Quantity: 20, Price: 8},
	}

	tiers, err := CanonicalBulkTiers(input)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10, 20}, quantities(tiers))
	assert.Equal(t, 9.5, tiers[0].Price)
	// caller's slice is left alone
	assert.Equal(t, 10, input[0].Quantity)
}

func TestCanonicalBulkTiersRejectsDuplicates(t *testing.T) {
	discount := 5.0
	inputs := [][]model.BulkTier{
		{{Quantity: 10, Price: 1}, {Quantity: 10, Price: 2}},
		{{Quantity: 10, Price: 1, Discount: &discount}, {Quantity: 3, Price: 1}, {Quantity: 10, Price: 1, Discount: &discount}},
	}

	for _, input := range inputs {
		_, err := CanonicalBulkTiers(input)
		var validation *apperror.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "bulkPricing", validation.Fields[0].Field)
	}
}

func TestCanonicalBulkTiersEmpty(t *testing.T) {
	tiers, err := CanonicalBulkTiers(nil)
	require.NoError(t, err)
	assert.Empty(t, tiers)
}
