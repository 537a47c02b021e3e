package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/recruit-engine/internal/rarity"
)

func testEntries() []Entry {
	return []Entry{
		{ID: "tide-scout", Name: "Tide Scout", Tier: rarity.Common},
		{ID: "ember-squire", Name: "Ember Squire", Tier: rarity.Common},
		{ID: "storm-dancer", Name: "Storm Dancer", Tier: rarity.Epic},
		{ID: "dawn-paladin", Name: "Dawn Paladin", Tier: rarity.Legendary},
	}
}

func TestNewStatic(t *testing.T) {
	c, err := NewStatic(testEntries())
	require.NoError(t, err)

	commons := c.ListByTier(rarity.Common)
	require.Len(t, commons, 2)
	// sorted by id for reproducible seeded picks
	assert.Equal(t, "ember-squire", commons[0].ID)
	assert.Equal(t, "tide-scout", commons[1].ID)

	e, ok := c.Get("dawn-paladin")
	require.True(t, ok)
	assert.Equal(t, rarity.Legendary, e.Tier)

	_, ok = c.Get("nobody")
	assert.False(t, ok)
	assert.Empty(t, c.ListByTier(rarity.Mythical))
}

func TestNewStaticRejectsBadContent(t *testing.T) {
	_, err := NewStatic([]Entry{
		{ID: "a", Tier: rarity.Common},
		{ID: "a", Tier: rarity.Rare},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewStatic([]Entry{{ID: "a", Tier: rarity.Tier(42)}})
	assert.Error(t, err)

	_, err = NewStatic([]Entry{{ID: "", Tier: rarity.Common}})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `characters:
  - { id: frost-archer, name: Frost Archer, tier: rare, element: water }
  - { id: lava-titan, name: Lava Titan, tier: epic, element: fire }
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	e, ok := c.Get("frost-archer")
	require.True(t, ok)
	assert.Equal(t, rarity.Rare, e.Tier)
	assert.Equal(t, "water", e.Element)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	base := NewMemoryRoster("owned-one")
	o := NewOverlay(base)

	assert.True(t, o.Owns("owned-one"))
	assert.False(t, o.Owns("fresh"))

	o.Add("fresh")
	assert.True(t, o.Owns("fresh"))
	// pending additions stay out of the base until flushed
	assert.False(t, base.Owns("fresh"))

	// already-owned ids never become pending
	o.Add("owned-one")
	assert.Equal(t, []string{"fresh"}, o.Pending())

	o.Flush()
	assert.True(t, base.Owns("fresh"))
	assert.Empty(t, o.Pending())
}

func TestMemoryRosterIDs(t *testing.T) {
	r := NewMemoryRoster("b", "a", "c")
	assert.Equal(t, []string{"a", "b", "c"}, r.IDs())
}
