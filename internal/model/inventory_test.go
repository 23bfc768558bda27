package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.NotEmpty(t, c.Presets)

	ids := map[string]bool{}
	for _, p := range c.Presets {
		assert.False(t, ids[p.ID], "duplicate preset id %s", p.ID)
		ids[p.ID] = true
		assert.True(t, p.Type.Valid())
	}
	assert.Len(t, c.ByCategory(CategoryTall), 2)
	assert.NotEmpty(t, c.ByCategory(CategoryWall))
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()
	p := c.FindByName("Base 600")
	require.NotNil(t, p)
	assert.Equal(t, 600.0, p.Width)

	byID := c.FindByID(p.ID)
	require.NotNil(t, byID)
	assert.Equal(t, "Base 600", byID.Name)

	assert.Nil(t, c.FindByName("nope"))
	assert.Nil(t, c.FindByID("nope"))
	assert.Equal(t, len(c.Presets), len(c.Names()))
}

func TestPresetNewUnit(t *testing.T) {
	p := NewUnitPreset("Wall 400", CategoryWall, 400, 720, 320)
	a := p.NewUnit()
	b := p.NewUnit()

	assert.NotEqual(t, a.InstanceID, b.InstanceID)
	assert.Equal(t, CategoryWall, a.Type)
	assert.Equal(t, "Wall 400", a.Label)
	assert.Equal(t, 320.0, a.Depth)
}
