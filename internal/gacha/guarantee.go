package gacha

import (
	"fmt"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
)

// ApplyGuarantees runs the banner's guarantee rules over a complete batch,
// after all pulls are rolled. Rules apply in declared order and each
// consumes its own counter:
//
//   - A rule fires when the batch is at least MinBatchSize pulls, no
//     result reaches MinTier, and the rule still has triggers left
//     (MaxTriggers <= 0 means unlimited).
//   - Firing upgrades exactly the LAST result in the batch to MinTier,
//     re-selecting a character at that tier. The fixed position keeps the
//     rule deterministic and testable. No result is ever removed or moved.
//
// counters maps rule id to the times it has triggered so far; it is
// mutated in place. The ids of rules that fired are returned in order.
func ApplyGuarantees(
	batch []Result,
	b *banner.Banner,
	counters map[string]int,
	fallbackBias float64,
	cat catalog.Catalog,
	roster catalog.Roster,
	rng RandomSource,
) ([]string, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	var fired []string
	for _, rule := range b.Guarantees {
		if rule.MaxTriggers > 0 && counters[rule.ID] >= rule.MaxTriggers {
			continue
		}
		if len(batch) < rule.MinBatchSize {
			continue
		}
		satisfied := true
		for _, r := range batch {
			if r.Tier >= rule.MinTier {
				satisfied = false
				break
			}
		}
		if !satisfied {
			continue
		}

		last := len(batch) - 1
		upgraded, err := SelectCharacter(b, rule.MinTier, fallbackBias, cat, roster, rng)
		if err != nil {
			return fired, fmt.Errorf("guarantee %s: %w", rule.ID, err)
		}
		upgraded.Position = batch[last].Position
		upgraded.WasGuaranteed = true
		batch[last] = upgraded

		counters[rule.ID]++
		fired = append(fired, rule.ID)
	}
	return fired, nil
}
