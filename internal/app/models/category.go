package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryIcon is a key into the client's icon set
type CategoryIcon string

const (
	IconFileText      CategoryIcon = "FileText"
	IconDollarSign    CategoryIcon = "DollarSign"
	IconHome          CategoryIcon = "Home"
	IconGraduationCap CategoryIcon = "GraduationCap"
	IconHeart         CategoryIcon = "Heart"
	IconPackage       CategoryIcon = "Package"
	// IconFolder is what unknown keys resolve to
	IconFolder CategoryIcon = "Folder"
)

var knownIcons = map[CategoryIcon]struct{}{
	IconFileText:      {},
	IconDollarSign:    {},
	IconHome:          {},
	IconGraduationCap: {},
	IconHeart:         {},
	IconPackage:       {},
	IconFolder:        {},
}

// ParseCategoryIcon resolves a stored key, mapping unknown keys to IconFolder
func ParseCategoryIcon(s string) CategoryIcon {
	if _, ok := knownIcons[CategoryIcon(s)]; ok {
		return CategoryIcon(s)
	}
	return IconFolder
}

// Valid reports whether the icon is a registry member
func (i CategoryIcon) Valid() bool {
	_, ok := knownIcons[i]
	return ok
}

// CategoryColor is a key into the client's color palette
type CategoryColor string

const (
	ColorChart1  CategoryColor = "chart-1"
	ColorChart2  CategoryColor = "chart-2"
	ColorChart3  CategoryColor = "chart-3"
	ColorChart4  CategoryColor = "chart-4"
	ColorChart5  CategoryColor = "chart-5"
	ColorPrimary CategoryColor = "primary"
)

var knownColors = map[CategoryColor]struct{}{
	ColorChart1:  {},
	ColorChart2:  {},
	ColorChart3:  {},
	ColorChart4:  {},
	ColorChart5:  {},
	ColorPrimary: {},
}

// ParseCategoryColor resolves a stored key, mapping unknown keys to ColorPrimary
func ParseCategoryColor(s string) CategoryColor {
	if _, ok := knownColors[CategoryColor(s)]; ok {
		return CategoryColor(s)
	}
	return ColorPrimary
}

// Valid reports whether the color is a registry member
func (c CategoryColor) Valid() bool {
	_, ok := knownColors[c]
	return ok
}

// Category is static reference data grouping tasks
type Category struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name" example:"College Applications"`
	Description string        `json:"description" db:"description"`
	Color       CategoryColor `json:"color" db:"color" example:"chart-1"`
	Icon        CategoryIcon  `json:"icon" db:"icon" example:"FileText"`
	SortOrder   int           `json:"sortOrder" db:"sort_order"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
}

// Normalize replaces unknown color or icon keys with their fallbacks
func (c *Category) Normalize() {
	c.Color = ParseCategoryColor(string(c.Color))
	c.Icon = ParseCategoryIcon(string(c.Icon))
}
