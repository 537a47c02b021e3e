package gacha

import (
	"errors"
	"fmt"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// ErrZeroWeights means every effective weight is zero; a misconfiguration
// surfaced instead of a division by zero. Banner validation makes this
// unreachable for registry-loaded banners.
var ErrZeroWeights = errors.New("rate table has no positive weight")

// EffectiveRates returns the banner's rate table with soft pity applied at
// the given counter value, normalized so the weights sum to exactly 100.
// The input table is never mutated.
func EffectiveRates(b *banner.Banner, pityCount int) (map[rarity.Tier]float64, error) {
	eff := make(map[rarity.Tier]float64, len(b.Rates))
	for t, w := range b.Rates {
		eff[t] = w
	}

	if soft := b.Pity.Soft; b.Pity.Enabled && soft != nil && pityCount >= soft.StartAt {
		add := float64(pityCount-soft.StartAt) * soft.RatePerPull
		if add > soft.MaxIncrease {
			add = soft.MaxIncrease
		}
		eff[b.Pity.Target] += add
	}

	var sum float64
	for _, w := range eff {
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w (banner %s)", ErrZeroWeights, b.ID)
	}
	for t := range eff {
		eff[t] = eff[t] / sum * 100
	}
	return eff, nil
}

// RollRarity resolves one pull's rarity tier:
//
//  1. Hard pity (counter at ceiling) returns the target tier without
//     drawing.
//  2. Otherwise a uniform value in [0,100) is drawn against the effective
//     rates and tiers are walked from highest rarity to lowest, skipping
//     tiers without a positive weight. The first tier whose cumulative
//     weight meets or exceeds the draw wins, so an exact floating-point
//     boundary resolves to the rarer tier. Zero-weight tiers are never
//     walked and so can never win a boundary.
func RollRarity(b *banner.Banner, pity PityTracker, rng RandomSource) (rarity.Tier, error) {
	if pity.HardPityNext(b.Pity) {
		return b.Pity.Target, nil
	}

	eff, err := EffectiveRates(b, pity.Count)
	if err != nil {
		return 0, err
	}

	if rng == nil {
		rng = DefaultRNG()
	}
	draw := rng.Float64() * 100

	cum := 0.0
	last := rarity.Common
	found := false
	for _, t := range rarity.TiersDescending() {
		w, ok := eff[t]
		if !ok || w <= 0 {
			continue
		}
		cum += w
		last = t
		found = true
		if draw <= cum {
			return t, nil
		}
	}
	if !found {
		return 0, fmt.Errorf("%w (banner %s)", ErrZeroWeights, b.ID)
	}
	// draw landed on the tail rounding error past the final cumulative
	// weight; it belongs to the lowest configured tier
	return last, nil
}
