package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

func commonBatch(n int) []Result {
	batch := make([]Result, n)
	for i := range batch {
		batch[i] = Result{CharacterID: "ember-squire", Tier: rarity.Common, Position: i}
	}
	return batch
}

func guaranteeBanner() *banner.Banner {
	b := testBanner()
	b.Guarantees = []banner.GuaranteeRule{
		{ID: "tenpull-epic", MinTier: rarity.Epic, MinBatchSize: 10},
	}
	return b
}

func TestGuaranteeUpgradesLastResult(t *testing.T) {
	b := guaranteeBanner()
	cat := testCatalog(t)
	batch := commonBatch(10)
	counters := map[string]int{}

	fired, err := ApplyGuarantees(batch, b, counters, 0, cat, catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0}})
	require.NoError(t, err)
	assert.Equal(t, []string{"tenpull-epic"}, fired)
	assert.Equal(t, 1, counters["tenpull-epic"])

	last := batch[9]
	assert.Equal(t, rarity.Epic, last.Tier)
	assert.True(t, last.WasGuaranteed)
	assert.Equal(t, 9, last.Position)

	// earlier results are untouched
	for _, r := range batch[:9] {
		assert.Equal(t, rarity.Common, r.Tier)
		assert.False(t, r.WasGuaranteed)
	}
}

func TestGuaranteeSatisfiedByBatch(t *testing.T) {
	b := guaranteeBanner()
	batch := commonBatch(10)
	batch[3].Tier = rarity.Legendary // above the minimum also satisfies

	fired, err := ApplyGuarantees(batch, b, map[string]int{}, 0, testCatalog(t), catalog.NewMemoryRoster(), DefaultRNG())
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Equal(t, rarity.Common, batch[9].Tier)
}

func TestGuaranteeIgnoresSmallBatches(t *testing.T) {
	b := guaranteeBanner()
	batch := commonBatch(1)

	fired, err := ApplyGuarantees(batch, b, map[string]int{}, 0, testCatalog(t), catalog.NewMemoryRoster(), DefaultRNG())
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestGuaranteeMaxTriggers(t *testing.T) {
	b := guaranteeBanner()
	b.Guarantees[0].MaxTriggers = 1
	counters := map[string]int{"tenpull-epic": 1}

	fired, err := ApplyGuarantees(commonBatch(10), b, counters, 0, testCatalog(t), catalog.NewMemoryRoster(), DefaultRNG())
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Equal(t, 1, counters["tenpull-epic"])
}

func TestGuaranteeRulesApplyInOrder(t *testing.T) {
	b := guaranteeBanner()
	b.Guarantees = append(b.Guarantees, banner.GuaranteeRule{
		ID: "tenpull-rare", MinTier: rarity.Rare, MinBatchSize: 10,
	})
	batch := commonBatch(10)
	counters := map[string]int{}

	fired, err := ApplyGuarantees(batch, b, counters, 0, testCatalog(t), catalog.NewMemoryRoster(), &stubRNG{vals: []float64{0}})
	require.NoError(t, err)
	// the epic upgrade from the first rule already satisfies the second
	assert.Equal(t, []string{"tenpull-epic"}, fired)
	assert.Equal(t, 0, counters["tenpull-rare"])
}

func TestGuaranteeEmptyBatch(t *testing.T) {
	fired, err := ApplyGuarantees(nil, guaranteeBanner(), map[string]int{}, 0, testCatalog(t), catalog.NewMemoryRoster(), DefaultRNG())
	require.NoError(t, err)
	assert.Empty(t, fired)
}
