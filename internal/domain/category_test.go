package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"Light", CategoryLight, false},
		{"tree", CategoryTree, false},
		{" MICROCLIMATE ", CategoryMicroclimate, false},
		{"sidewalk", CategorySidewalk, false},
		{"Custom", CategoryCustom, false},
		{"noise", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_LabelsRoundTrip(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
		got, err := ParseCategory(c.Key())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	assert.False(t, Category(42).Valid())
	assert.Equal(t, "Unknown", Category(42).Label())
}

func TestFix_Valid(t *testing.T) {
	tests := []struct {
		name string
		fix  Fix
		want bool
	}{
		{"taipei", Fix{Latitude: 25.03, Longitude: 121.56, HorizontalAccuracy: 5}, true},
		{"null island", Fix{}, true},
		{"latitude out of range", Fix{Latitude: 91}, false},
		{"longitude out of range", Fix{Longitude: -181}, false},
		{"negative accuracy", Fix{HorizontalAccuracy: -1}, false},
		{"nan", Fix{Latitude: math.NaN()}, false},
		{"infinite accuracy", Fix{HorizontalAccuracy: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fix.Valid())
		})
	}
}

func TestAuthorizationState_Granted(t *testing.T) {
	assert.False(t, AuthNotDetermined.Granted())
	assert.False(t, AuthRestricted.Granted())
	assert.False(t, AuthDenied.Granted())
	assert.True(t, AuthWhenInUse.Granted())
	assert.True(t, AuthAlways.Granted())
}
