package gacha

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// stubRNG replays a fixed sequence of values, cycling when exhausted.
type stubRNG struct {
	vals []float64
	i    int
}

func (s *stubRNG) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func floatPtr(v float64) *float64 { return &v }

func testBanner() *banner.Banner {
	return &banner.Banner{
		ID:      "starfall",
		Name:    "Starfall Recruitment",
		Active:  true,
		StartAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Rates: map[rarity.Tier]float64{
			rarity.Common:    81.5,
			rarity.Rare:      15,
			rarity.Epic:      3,
			rarity.Legendary: 0.5,
		},
		Costs: map[int]currency.Cost{
			1:  {Kind: currency.PremiumGems, Amount: 160},
			10: {Kind: currency.PremiumGems, Amount: 1440},
		},
		Pity: banner.PityConfig{
			Enabled:     true,
			Ceiling:     100,
			Target:      rarity.Legendary,
			ResetOnPull: true,
			Soft:        &banner.SoftPityConfig{StartAt: 50, RatePerPull: 1.5, MaxIncrease: 10},
		},
	}
}

func testCatalog(t *testing.T) *catalog.Static {
	t.Helper()
	c, err := catalog.NewStatic([]catalog.Entry{
		{ID: "ember-squire", Name: "Ember Squire", Tier: rarity.Common},
		{ID: "tide-scout", Name: "Tide Scout", Tier: rarity.Common},
		{ID: "frost-archer", Name: "Frost Archer", Tier: rarity.Rare},
		{ID: "abyss-siren", Name: "Abyss Siren", Tier: rarity.Epic},
		{ID: "lava-titan", Name: "Lava Titan", Tier: rarity.Epic},
		{ID: "dawn-paladin", Name: "Dawn Paladin", Tier: rarity.Legendary},
		{ID: "night-reaper", Name: "Night Reaper", Tier: rarity.Legendary},
	})
	require.NoError(t, err)
	return c
}

func TestDraw(t *testing.T) {
	rng := &stubRNG{vals: []float64{0.5}}

	hit, err := Draw(0, rng)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = Draw(1, rng)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = Draw(0.6, rng)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = Draw(0.4, rng)
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = Draw(1.5, rng)
	assert.ErrorIs(t, err, ErrInvalidProb)
	_, err = Draw(-0.1, rng)
	assert.ErrorIs(t, err, ErrInvalidProb)
}
