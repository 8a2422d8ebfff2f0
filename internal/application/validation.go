package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"geolog/internal/domain"
)

// ValidateRequired reports a blank field as a ValidationError
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// fieldLabels names fields whose key does not read well in a message
var fieldLabels = map[string]string{
	"format": "export format",
}

func formatFieldName(fieldName string) string {
	if label, ok := fieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}

// ParseObservation turns raw form input into the optional value and note of
// a record. At least one of them must be non-blank.
func ParseObservation(valueText, noteText string) (*float64, *string, error) {
	valueText = strings.TrimSpace(valueText)
	if valueText == "" && strings.TrimSpace(noteText) == "" {
		return nil, nil, &ValidationError{
			Field:   "observation",
			Message: "enter a value or a note",
			Err:     ErrEmptyInput,
		}
	}

	var value *float64
	if valueText != "" {
		v, err := strconv.ParseFloat(valueText, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, &ValidationError{
				Field:   "value",
				Message: fmt.Sprintf("not a number: %q", valueText),
			}
		}
		value = &v
	}

	var note *string
	if strings.TrimSpace(noteText) != "" {
		n := strings.TrimSpace(noteText)
		note = &n
	}

	return value, note, nil
}

// ParseCategory resolves a category name. A blank name is a missing field;
// an unrecognised one wraps ErrUnknownCategory.
func ParseCategory(name string) (domain.Category, error) {
	if err := ValidateRequired("category", name); err != nil {
		return 0, err
	}
	c, err := domain.ParseCategory(name)
	if err != nil {
		return 0, &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown category %q (expected one of %s)", name, CategoryKeys()),
			Err:     ErrUnknownCategory,
		}
	}
	return c, nil
}

// CategoryKeys lists the accepted category keys, comma separated
func CategoryKeys() string {
	keys := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		keys[i] = c.Key()
	}
	return strings.Join(keys, ", ")
}
