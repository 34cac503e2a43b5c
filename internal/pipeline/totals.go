package pipeline

import "github.com/movinv/movinv/internal/domain"

// ComputeTotals folds the item list into summary totals. Items marked not
// going contribute nothing but stay in the inventory. The safety factor is a
// packing-overhead multiplier applied to volume and weight, never to count.
func ComputeTotals(items []*domain.Item, safetyFactor float64) domain.Totals {
	var totals domain.Totals
	var volume, weight float64

	for _, item := range items {
		if !item.IsGoing {
			continue
		}
		totals.TotalItems += item.Quantity
		volume += item.Volume * float64(item.Quantity)
		weight += item.Weight * float64(item.Quantity)
	}

	totals.TotalVolume = (1 + safetyFactor) * volume
	totals.TotalWeight = (1 + safetyFactor) * weight
	return totals
}
