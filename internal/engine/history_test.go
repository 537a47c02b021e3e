package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtding233/recruit-engine/internal/gacha"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

func record(id, bannerID string, tiers ...rarity.Tier) Record {
	rec := Record{ID: id, BannerID: bannerID}
	for i, tier := range tiers {
		rec.Results = append(rec.Results, gacha.Result{Tier: tier, Position: i})
	}
	return rec
}

func TestHistoryAppendEvictsFIFO(t *testing.T) {
	h := NewHistory(2)
	h.Append(record("a", "x"))
	h.Append(record("b", "x"))
	h.Append(record("c", "x"))

	all := h.All()
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
}

func TestHistoryByBanner(t *testing.T) {
	h := NewHistory(10)
	h.Append(record("a", "x"))
	h.Append(record("b", "y"))
	h.Append(record("c", "x"))

	got := h.ByBanner("x")
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Empty(t, h.ByBanner("z"))
}

func TestHistoryRestoreTrims(t *testing.T) {
	h := NewHistory(2)
	h.restore([]Record{record("a", "x"), record("b", "x"), record("c", "x")})
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "b", h.All()[0].ID)
}

func TestStatisticsStreaks(t *testing.T) {
	h := NewHistory(10)
	h.Append(record("a", "x",
		rarity.Common, rarity.Common, rarity.Epic, rarity.Common))
	// streaks continue across record boundaries
	h.Append(record("b", "x",
		rarity.Common, rarity.Legendary, rarity.Epic))

	s := h.Statistics(rarity.Epic)
	assert.Equal(t, 2, s.TotalSummons)
	assert.Equal(t, 7, s.TotalPulls)
	assert.Equal(t, 4, s.ByTier[rarity.Common])
	assert.Equal(t, 2, s.ByTier[rarity.Epic])
	assert.Equal(t, 1, s.ByTier[rarity.Legendary])
	assert.Equal(t, 2, s.LongestDryStreak)
	assert.Equal(t, 2, s.LuckiestStreak)
}

func TestStatisticsActivationCounters(t *testing.T) {
	h := NewHistory(10)
	rec := record("a", "x", rarity.Common, rarity.Legendary, rarity.Epic)
	rec.Results[1].PityTriggered = true
	rec.Results[1].WasGuaranteed = true
	rec.Results[2].WasGuaranteed = true
	rec.Results[0].IsNew = true
	h.Append(rec)

	s := h.Statistics(rarity.Epic)
	// hard pity is counted once, not double-counted as a guarantee
	assert.Equal(t, 1, s.PityActivations)
	assert.Equal(t, 1, s.GuaranteeActivations)
	assert.Equal(t, 1, s.NewCharacters)
}

func TestStatisticsEmpty(t *testing.T) {
	s := NewHistory(5).Statistics(rarity.Epic)
	assert.Zero(t, s.TotalSummons)
	assert.Zero(t, s.LongestDryStreak)
	assert.NotNil(t, s.ByTier)
}
