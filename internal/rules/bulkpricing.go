package rules

import (
	"fmt"
	"sort"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
)

// CanonicalBulkTiers returns the tiers sorted by ascending quantity and
// rejects any list where two tiers share a quantity. The input is not modified.
func CanonicalBulkTiers(tiers []model.BulkTier) (model.BulkTiers, error) {
	sorted := make(model.BulkTiers, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quantity < sorted[j].Quantity
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Quantity <= sorted[i-1].Quantity {
			return nil, apperror.NewValidation("bulkPricing",
				fmt.Sprintf("Bulk pricing quantities must be in ascending order and unique (quantity %d repeats)", sorted[i].Quantity))
		}
	}
	return sorted, nil
}
