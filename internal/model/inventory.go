package model

import (
	"fmt"

	"github.com/google/uuid"
)

// UnitPreset is a reusable cabinet definition from the catalog.
type UnitPreset struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Type   Category `json:"type" yaml:"type"`
	Width  float64  `json:"width" yaml:"width"`   // mm
	Height float64  `json:"height" yaml:"height"` // mm
	Depth  float64  `json:"depth" yaml:"depth"`   // mm
}

// NewUnitPreset creates a new UnitPreset with a generated ID.
func NewUnitPreset(name string, category Category, w, h, d float64) UnitPreset {
	return UnitPreset{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Type:   category,
		Width:  w,
		Height: h,
		Depth:  d,
	}
}

// NewUnit creates a fresh unit instance from the preset.
func (p UnitPreset) NewUnit() Unit {
	return NewUnit(p.Name, p.Type, p.Width, p.Height, p.Depth)
}

// Catalog holds the user's saved unit presets.
type Catalog struct {
	Presets []UnitPreset `json:"presets" yaml:"presets"`
}

// DefaultCatalog returns a catalog populated with standard kitchen modules.
func DefaultCatalog() Catalog {
	c := Catalog{}
	for _, w := range []float64{300, 400, 600, 800} {
		c.Presets = append(c.Presets, NewUnitPreset(fmt.Sprintf("Base %.0f", w), CategoryBase, w, 720, 560))
	}
	c.Presets = append(c.Presets, NewUnitPreset("Base 600 shallow", CategoryBase, 600, 720, 500))
	for _, w := range []float64{300, 400, 600, 800} {
		c.Presets = append(c.Presets, NewUnitPreset(fmt.Sprintf("Wall %.0f", w), CategoryWall, w, 720, 320))
	}
	c.Presets = append(c.Presets,
		NewUnitPreset("Tall 600", CategoryTall, 600, 2100, 560),
		NewUnitPreset("Tall 450", CategoryTall, 450, 2100, 560),
	)
	return c
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (c *Catalog) FindByID(id string) *UnitPreset {
	for i := range c.Presets {
		if c.Presets[i].ID == id {
			return &c.Presets[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (c *Catalog) FindByName(name string) *UnitPreset {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i]
		}
	}
	return nil
}

// Names returns the preset names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		names[i] = p.Name
	}
	return names
}

// ByCategory returns the presets of one category.
func (c *Catalog) ByCategory(category Category) []UnitPreset {
	var out []UnitPreset
	for _, p := range c.Presets {
		if p.Type.Normalized() == category.Normalized() {
			out = append(out, p)
		}
	}
	return out
}
