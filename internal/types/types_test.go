package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMinAmountOut(t *testing.T) {
	tests := []struct {
		name     string
		expected float64
		config   SlippageConfig
		want     uint64
	}{
		{name: "None sends zero", expected: 1_000_000, config: SlippageConfig{Type: SlippageNone}, want: 0},
		{name: "Unset sends zero", expected: 1_000_000, config: SlippageConfig{}, want: 0},
		{name: "Percent", expected: 1_000_000, config: SlippageConfig{Type: SlippagePercent, Value: 50}, want: 500_000},
		{name: "Percent floors", expected: 999, config: SlippageConfig{Type: SlippagePercent, Value: 1}, want: 989},
		{name: "Percent without estimate", expected: 0, config: SlippageConfig{Type: SlippagePercent, Value: 5}, want: 0},
		{name: "Fixed", expected: 1_000_000, config: SlippageConfig{Type: SlippageFixed, Value: 42}, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateMinAmountOut(tt.expected, tt.config))
		})
	}
}

func TestSlippageConfig_Validate(t *testing.T) {
	assert.NoError(t, SlippageConfig{}.Validate())
	assert.NoError(t, SlippageConfig{Type: SlippagePercent, Value: 1}.Validate())
	assert.Error(t, SlippageConfig{Type: SlippagePercent, Value: 100}.Validate())
	assert.Error(t, SlippageConfig{Type: SlippageFixed, Value: -1}.Validate())
	assert.Error(t, SlippageConfig{Type: "magic"}.Validate())
}

func TestPriorityLevel(t *testing.T) {
	assert.Equal(t, uint64(123), PriorityLevel("").UnitPrice(123))
	assert.Equal(t, uint64(10_000), PriorityLow.UnitPrice(123))
	assert.Equal(t, uint64(500_000), PriorityExtreme.UnitPrice(123))

	assert.NoError(t, PriorityLevel("").Validate())
	assert.NoError(t, PriorityHigh.Validate())
	assert.Error(t, PriorityLevel("turbo").Validate())
}
