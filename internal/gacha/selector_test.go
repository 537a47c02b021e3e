package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

func TestSelectCharacterEmptyPool(t *testing.T) {
	b := testBanner()
	cat := testCatalog(t)
	_, err := SelectCharacter(b, rarity.Mythical, 0.5, cat, catalog.NewMemoryRoster(), DefaultRNG())
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestSelectCharacterNewVsDuplicate(t *testing.T) {
	b := testBanner()
	cat := testCatalog(t)

	res, err := SelectCharacter(b, rarity.Rare, 0, cat, catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0}})
	require.NoError(t, err)
	assert.Equal(t, "frost-archer", res.CharacterID)
	assert.True(t, res.IsNew)
	assert.False(t, res.IsDuplicate)

	roster := catalog.NewMemoryRoster("frost-archer")
	res, err = SelectCharacter(b, rarity.Rare, 0, cat, roster, &stubRNG{vals: []float64{0}})
	require.NoError(t, err)
	assert.False(t, res.IsNew)
	assert.True(t, res.IsDuplicate)
}

func TestSelectCharacterPrefersUnowned(t *testing.T) {
	b := testBanner()
	cat := testCatalog(t)
	roster := catalog.NewMemoryRoster("abyss-siren")

	// whatever the rng says, the unowned epic must win
	for _, v := range []float64{0, 0.5, 0.99} {
		res, err := SelectCharacter(b, rarity.Epic, 0, cat, roster, &stubRNG{vals: []float64{v}})
		require.NoError(t, err)
		assert.Equal(t, "lava-titan", res.CharacterID)
		assert.True(t, res.IsNew)
	}
}

func TestSelectCharacterFeaturedBias(t *testing.T) {
	b := testBanner()
	b.Featured = []string{"dawn-paladin"}
	b.FeaturedBias = floatPtr(1)
	cat := testCatalog(t)

	res, err := SelectCharacter(b, rarity.Legendary, 0, cat, catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0.9}})
	require.NoError(t, err)
	assert.Equal(t, "dawn-paladin", res.CharacterID)
	assert.True(t, res.WasFeatured)
}

func TestSelectCharacterBiasFallback(t *testing.T) {
	b := testBanner()
	b.Featured = []string{"dawn-paladin"}
	b.FeaturedBias = nil // unset: banner defers to the engine default
	cat := testCatalog(t)

	res, err := SelectCharacter(b, rarity.Legendary, 1, cat, catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0.9}})
	require.NoError(t, err)
	assert.Equal(t, "dawn-paladin", res.CharacterID)

	// zero bias everywhere: the whole pool is in play and a high pick
	// lands on the unfeatured legendary
	res, err = SelectCharacter(b, rarity.Legendary, 0, cat, catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0.9}})
	require.NoError(t, err)
	assert.Equal(t, "night-reaper", res.CharacterID)
	assert.False(t, res.WasFeatured)
}

// A banner that sets featured_bias to 0 turns the preference off; the
// engine default must not creep back in.
func TestSelectCharacterExplicitZeroBias(t *testing.T) {
	b := testBanner()
	b.Featured = []string{"dawn-paladin"}
	b.FeaturedBias = floatPtr(0)
	cat := testCatalog(t)

	res, err := SelectCharacter(b, rarity.Legendary, 1, cat, catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0.9}})
	require.NoError(t, err)
	assert.Equal(t, "night-reaper", res.CharacterID)
	assert.False(t, res.WasFeatured)
}
