package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/movinv/movinv/internal/domain"
)

func TestComputeTotals(t *testing.T) {
	items := []*domain.Item{
		{Name: "Sofa", Quantity: 1, Volume: 50, Weight: 120, IsGoing: true},
		{Name: "Medium boxes", Quantity: 4, Volume: 3, Weight: 25, IsGoing: true},
		{Name: "Piano", Quantity: 1, Volume: 80, Weight: 400, IsGoing: false},
	}

	totals := ComputeTotals(items, 0.20)

	// 1 sofa + 4 boxes; the piano stays home.
	assert.Equal(t, 5, totals.TotalItems)
	assert.InDelta(t, 1.2*(50+4*3), totals.TotalVolume, 1e-9)
	assert.InDelta(t, 1.2*(120+4*25), totals.TotalWeight, 1e-9)
}

func TestComputeTotalsQuantityMultiplies(t *testing.T) {
	items := []*domain.Item{
		{Name: "Extra-large boxes", Quantity: 1, Volume: 6, Weight: 35, IsGoing: true},
	}

	totals := ComputeTotals(items, 0.20)
	assert.Equal(t, 1, totals.TotalItems)
	assert.InDelta(t, 7.2, totals.TotalVolume, 1e-9)
	assert.InDelta(t, 42, totals.TotalWeight, 1e-9)
}

func TestComputeTotalsNegativeFactorShrinks(t *testing.T) {
	items := []*domain.Item{
		{Name: "Desk", Quantity: 2, Volume: 10, Weight: 60, IsGoing: true},
	}

	totals := ComputeTotals(items, -0.10)
	assert.Equal(t, 2, totals.TotalItems)
	assert.InDelta(t, 18, totals.TotalVolume, 1e-9)
	assert.InDelta(t, 108, totals.TotalWeight, 1e-9)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, 0.40)
	assert.Equal(t, domain.Totals{}, totals)
}

func TestComputeTotalsDeterministic(t *testing.T) {
	items := []*domain.Item{
		{Name: "Chair", Quantity: 3, Volume: 8, Weight: 20, IsGoing: true},
		{Name: "Lamp", Quantity: 2, Volume: 2, Weight: 5, IsGoing: true},
	}

	first := ComputeTotals(items, 0.10)
	second := ComputeTotals(items, 0.10)
	assert.Equal(t, first, second)
}
