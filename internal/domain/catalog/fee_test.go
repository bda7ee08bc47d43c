package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhq/compliance-engine/pkg/errors"
)

func TestFixedFeeNormalize(t *testing.T) {
	got, err := FixedFee{Amount: 800}.Normalize()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 800.0, *got)
}

func TestFixedFeeNormalizeRounds(t *testing.T) {
	got, err := FixedFee{Amount: 19.999}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 20.0, *got)
}

func TestRangeFeeNormalizeMidpoint(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     float64
	}{
		{"simple midpoint", 100, 200, 150},
		{"degenerate range", 50, 50, 50},
		{"zero minimum", 0, 75, 37.5},
		{"rounds to two decimals", 0.10, 0.15, 0.13},
		{"wide statutory range", 175, 200000, 100087.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangeFee{Min: tt.min, Max: tt.max}.Normalize()
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestRangeFeeNormalizeInverted(t *testing.T) {
	got, err := RangeFee{Min: 500, Max: 100}.Normalize()
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFeeRange))
}

func TestUnknownFeeNormalize(t *testing.T) {
	got, err := UnknownFee{}.Normalize()
	assert.NoError(t, err)
	assert.Nil(t, got)
}
