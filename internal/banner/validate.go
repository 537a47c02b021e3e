package banner

import (
	"fmt"
	"strings"

	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// Validate checks the semantic constraints of a banner definition. It
// collects every violation so a config author sees them all at once.
// Validation runs at load time; a banner that passes can never produce a
// configuration error during a roll.
func Validate(b *Banner) error {
	var errs []string

	if b.ID == "" {
		errs = append(errs, "id must not be empty")
	}

	// rate table
	var sum float64
	positive := 0
	for t, w := range b.Rates {
		if !t.Valid() {
			errs = append(errs, fmt.Sprintf("rates: invalid tier %d", int(t)))
			continue
		}
		if w < 0 {
			errs = append(errs, fmt.Sprintf("rates.%s must be >= 0", t))
			continue
		}
		if w > 0 {
			positive++
		}
		sum += w
	}
	if len(b.Rates) == 0 {
		errs = append(errs, "rates must not be empty")
	} else if positive == 0 {
		errs = append(errs, "rates must contain at least one positive weight")
	}
	_ = sum // any positive sum is renormalizable to 100

	// cost table
	if len(b.Costs) == 0 {
		errs = append(errs, "costs must not be empty")
	}
	for n, c := range b.Costs {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("costs: pull count %d must be >= 1", n))
		}
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("costs[%d]: %v", n, err))
		}
	}

	// pity
	if b.Pity.Enabled {
		if b.Pity.Ceiling < 1 {
			errs = append(errs, "pity.ceiling must be >= 1")
		}
		if !b.Pity.Target.Valid() {
			errs = append(errs, fmt.Sprintf("pity.target: invalid tier %d", int(b.Pity.Target)))
		} else if _, ok := b.Rates[b.Pity.Target]; !ok {
			errs = append(errs, fmt.Sprintf("pity.target %s missing from rates", b.Pity.Target))
		}
		if soft := b.Pity.Soft; soft != nil {
			if soft.StartAt < 0 || soft.StartAt >= b.Pity.Ceiling {
				errs = append(errs, "pity.soft.start_at must satisfy 0 <= start_at < ceiling")
			}
			if soft.RatePerPull <= 0 {
				errs = append(errs, "pity.soft.rate_per_pull must be > 0")
			}
			if soft.MaxIncrease < 0 {
				errs = append(errs, "pity.soft.max_increase must be >= 0")
			}
		}
		if b.Pity.CarryOver && b.Pity.Family == "" {
			errs = append(errs, "pity.carry_over requires an explicit pity.family")
		}
	}

	// guarantees
	seen := make(map[string]bool, len(b.Guarantees))
	for i, g := range b.Guarantees {
		if g.ID == "" {
			errs = append(errs, fmt.Sprintf("guarantees[%d].id must not be empty", i))
		} else if seen[g.ID] {
			errs = append(errs, fmt.Sprintf("guarantees[%d].id %q duplicated", i, g.ID))
		}
		seen[g.ID] = true
		if !g.MinTier.Valid() {
			errs = append(errs, fmt.Sprintf("guarantees[%d].min_tier invalid", i))
		}
		if g.MinBatchSize < 1 {
			errs = append(errs, fmt.Sprintf("guarantees[%d].min_batch must be >= 1", i))
		}
		if g.MaxTriggers < 0 {
			errs = append(errs, fmt.Sprintf("guarantees[%d].max_triggers must be >= 0 (0 means unlimited)", i))
		}
	}

	// featured
	for i, id := range b.Featured {
		if id == "" {
			errs = append(errs, fmt.Sprintf("featured[%d] must not be empty", i))
		}
	}
	if b.FeaturedBias != nil && (*b.FeaturedBias < 0 || *b.FeaturedBias > 1) {
		errs = append(errs, "featured_bias must be in [0,1]")
	}

	// window
	if b.EndAt != nil && !b.EndAt.After(b.StartAt) {
		errs = append(errs, "end must be after start")
	}

	if len(errs) > 0 {
		return fmt.Errorf("banner validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CheckCatalog verifies a banner against the character content: every tier
// that can be rolled (positive weight, pity target, guarantee upgrade
// targets) must have at least one catalog entry, and featured ids must
// exist at a tier the banner can produce. This keeps empty-pool failures
// at load time.
func CheckCatalog(b *Banner, cat catalog.Catalog) error {
	var errs []string

	need := make(map[rarity.Tier]bool)
	for t, w := range b.Rates {
		if w > 0 {
			need[t] = true
		}
	}
	if b.Pity.Enabled {
		need[b.Pity.Target] = true
	}
	for _, g := range b.Guarantees {
		need[g.MinTier] = true
	}
	for t := range need {
		if len(cat.ListByTier(t)) == 0 {
			errs = append(errs, fmt.Sprintf("no catalog characters at tier %s", t))
		}
	}

	for _, id := range b.Featured {
		if _, ok := cat.Get(id); !ok {
			errs = append(errs, fmt.Sprintf("featured character %q not in catalog", id))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("banner %s: %s", b.ID, strings.Join(errs, "; "))
	}
	return nil
}
