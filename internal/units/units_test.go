package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	testCases := []struct {
		name  string
		value float64
		from  Unit
		to    Unit
		want  float64
	}{
		{name: "MetersToKilometers", value: 1500, from: Meters, to: Kilometers, want: 1.5},
		{name: "KilometersToMeters", value: 2, from: Kilometers, to: Meters, want: 2000},
		{name: "MilesToKilometers", value: 1, from: Miles, to: Kilometers, want: 1.609344},
		{name: "FeetToMeters", value: 10, from: Feet, to: Meters, want: 3.048},
		{name: "Identity", value: 42.5, from: Kilometers, to: Kilometers, want: 42.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(tc.value, tc.from, tc.to)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestConvert_UnknownUnit(t *testing.T) {
	_, err := Convert(1, Unit("furlong"), Kilometers)
	assert.Error(t, err)

	_, err = Convert(1, Kilometers, Unit(""))
	assert.Error(t, err)
}

func TestConverter_PropagatesNaN(t *testing.T) {
	f, err := Converter(Meters, Miles)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f(math.NaN())))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Kilometers))
	assert.True(t, Valid(Feet))
	assert.False(t, Valid(Unit("parsec")))
}
