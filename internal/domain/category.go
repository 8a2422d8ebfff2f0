package domain

import (
	"fmt"
	"strings"
)

// Category represents the kind of observation collected in a session
type Category int

const (
	CategoryLight Category = iota
	CategoryTree
	CategoryMicroclimate
	CategorySidewalk
	CategoryCustom
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryLight,
	CategoryTree,
	CategoryMicroclimate,
	CategorySidewalk,
	CategoryCustom,
}

// Label returns the fixed display label written to exports
func (c Category) Label() string {
	switch c {
	case CategoryLight:
		return "Light"
	case CategoryTree:
		return "Tree"
	case CategoryMicroclimate:
		return "Microclimate"
	case CategorySidewalk:
		return "Sidewalk"
	case CategoryCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Key returns the lower-case identifier used by flags and tool arguments
func (c Category) Key() string {
	return strings.ToLower(c.Label())
}

// Unit returns a hint for the measured quantity, empty when there is none
func (c Category) Unit() string {
	switch c {
	case CategoryLight:
		return "lux"
	case CategoryTree, CategorySidewalk:
		return "cm"
	case CategoryMicroclimate:
		return "°C"
	default:
		return ""
	}
}

func (c Category) String() string {
	return c.Label()
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c >= CategoryLight && c <= CategoryCustom
}

// ParseCategory resolves a label or key, case-insensitively
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category: %q", s)
}
