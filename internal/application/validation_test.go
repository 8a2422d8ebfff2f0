package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolog/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("category", "light"))

	err := ValidateRequired("format", " \t")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "format", valErr.Field)
	assert.Equal(t, "format: export format is required", err.Error())

	assert.EqualError(t, ValidateRequired("category", ""), "category: category is required")
}

func TestParseObservation(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		note      string
		wantValue *float64
		wantNote  *string
		wantErr   error
		wantField string
	}{
		{
			name:      "value only",
			value:     "350",
			wantValue: ptr(350.0),
		},
		{
			name:     "note only is trimmed",
			note:     "  banyan  ",
			wantNote: ptr("banyan"),
		},
		{
			name:      "both",
			value:     " 15.5 ",
			note:      "shaded, north",
			wantValue: ptr(15.5),
			wantNote:  ptr("shaded, north"),
		},
		{
			name:      "negative value",
			value:     "-3.25",
			wantValue: ptr(-3.25),
		},
		{
			name:      "neither",
			value:     " ",
			note:      "",
			wantErr:   ErrEmptyInput,
			wantField: "observation",
		},
		{
			name:      "not a number",
			value:     "bright",
			wantField: "value",
		},
		{
			name:      "nan rejected",
			value:     "NaN",
			wantField: "value",
		},
		{
			name:      "infinity rejected",
			value:     "+Inf",
			note:      "x",
			wantField: "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, note, err := ParseObservation(tt.value, tt.note)
			if tt.wantField != "" {
				var valErr *ValidationError
				require.True(t, errors.As(err, &valErr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, valErr.Field)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantNote, note)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Microclimate")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryMicroclimate, c)

	_, err = ParseCategory("noise")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Contains(t, err.Error(), "light, tree, microclimate, sidewalk, custom")

	_, err = ParseCategory("  ")
	assert.NotErrorIs(t, err, ErrUnknownCategory)
	assert.EqualError(t, err, "category: category is required")
}

func TestExportError_IsSerialization(t *testing.T) {
	err := error(&ExportError{Format: "csv", Err: errors.New("disk full")})
	assert.ErrorIs(t, err, ErrSerialization)
	assert.Equal(t, "csv export failed: disk full", err.Error())
}

func ptr[T any](v T) *T {
	return &v
}
