package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxSizeFromName(t *testing.T) {
	tests := []struct {
		name     string
		wantSize string
		wantOK   bool
	}{
		{"Small boxes", BoxSmall, true},
		{"small box", BoxSmall, true},
		{"Medium boxes (est.)", BoxMedium, true},
		{"Large boxes", BoxLarge, true},
		{"Extra-large boxes", BoxExtraLarge, true},
		{"extra large boxes", BoxExtraLarge, true},
		{"XL boxes", BoxExtraLarge, true},
		{"  Large boxes (est.) ", BoxLarge, true},
		{"Sofa", "", false},
		{"Boxing gloves", "", false},
		{"Large dresser", "", false},
		// Box-adjacent names keep their measured figures.
		{"Large toolbox", "", false},
		{"Box spring", "", false},
		{"Small box of tools", "", false},
		{"Medium boxwood planter", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, ok := BoxSizeFromName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestBoxSpecs(t *testing.T) {
	assert.Equal(t, BoxSpec{CuFt: 1.5, Lb: 15}, BoxSpecs[BoxSmall])
	assert.Equal(t, BoxSpec{CuFt: 3, Lb: 25}, BoxSpecs[BoxMedium])
	assert.Equal(t, BoxSpec{CuFt: 4.5, Lb: 30}, BoxSpecs[BoxLarge])
	assert.Equal(t, BoxSpec{CuFt: 6, Lb: 35}, BoxSpecs[BoxExtraLarge])
}

func TestIsEstimatedName(t *testing.T) {
	assert.True(t, IsEstimatedName("Medium boxes (est.)"))
	assert.False(t, IsEstimatedName("Medium boxes"))
	assert.False(t, IsEstimatedName("Establishment sign"))
}

func TestValidSafetyFactor(t *testing.T) {
	for _, f := range SafetyFactors {
		assert.True(t, ValidSafetyFactor(f), "factor %v", f)
	}
	// Values arriving over JSON wobble slightly.
	assert.True(t, ValidSafetyFactor(0.30000000000000004))
	assert.False(t, ValidSafetyFactor(0.15))
	assert.False(t, ValidSafetyFactor(0.5))
	assert.False(t, ValidSafetyFactor(-0.2))
}
