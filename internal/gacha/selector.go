package gacha

import (
	"fmt"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// ErrEmptyPool means the rolled tier has no catalog characters. This is a
// content-configuration error and is surfaced, never silently mapped to a
// different tier. CheckCatalog at banner load makes it unreachable in a
// committed deployment.
var ErrEmptyPool = fmt.Errorf("no catalog characters for rolled tier")

// SelectCharacter picks a concrete character for a resolved tier:
//
//   - With probability bias (the banner's featured bias, or fallbackBias
//     when the banner leaves it unset; an explicit 0 disables the
//     preference) the candidate pool narrows to the banner's featured
//     characters of that tier, when any exist.
//   - Unowned candidates are preferred over the whole pool, maximizing new
//     pulls; duplicates are only possible once everything in the pool is
//     owned.
//
// The returned Result has Tier, CharacterID, IsNew/IsDuplicate, and
// WasFeatured populated; batch-level fields are left for the caller.
func SelectCharacter(
	b *banner.Banner,
	tier rarity.Tier,
	fallbackBias float64,
	cat catalog.Catalog,
	roster catalog.Roster,
	rng RandomSource,
) (Result, error) {
	pool := cat.ListByTier(tier)
	if len(pool) == 0 {
		return Result{}, fmt.Errorf("%w: %s (banner %s)", ErrEmptyPool, tier, b.ID)
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	var featured []catalog.Entry
	for _, e := range pool {
		if b.IsFeatured(e.ID) {
			featured = append(featured, e)
		}
	}

	bias := fallbackBias
	if b.FeaturedBias != nil {
		bias = *b.FeaturedBias
	}

	candidates := pool
	if len(featured) > 0 {
		preferFeatured, err := Draw(bias, rng)
		if err != nil {
			return Result{}, err
		}
		if preferFeatured {
			candidates = featured
		}
	}

	var unowned []catalog.Entry
	for _, e := range candidates {
		if !roster.Owns(e.ID) {
			unowned = append(unowned, e)
		}
	}
	if len(unowned) > 0 {
		candidates = unowned
	}

	chosen := candidates[pick(len(candidates), rng)]
	owned := roster.Owns(chosen.ID)
	return Result{
		CharacterID:   chosen.ID,
		CharacterName: chosen.Name,
		Tier:          tier,
		IsNew:         !owned,
		IsDuplicate:   owned,
		WasFeatured:   b.IsFeatured(chosen.ID),
	}, nil
}
