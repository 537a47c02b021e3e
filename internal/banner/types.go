// Package banner holds banner definitions and the registry the summon
// engine resolves banners from. Banner rate/cost/pity configuration is
// immutable once a banner has been pulled against; only the active flag
// may still change.
package banner

import (
	"sort"
	"time"

	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// SoftPityConfig describes the pre-ceiling rate escalation: from StartAt
// pulls without the target tier, the target tier's weight grows by
// RatePerPull per pull, with the total addition capped at MaxIncrease.
type SoftPityConfig struct {
	StartAt     int     `yaml:"start_at"`
	RatePerPull float64 `yaml:"rate_per_pull"`
	MaxIncrease float64 `yaml:"max_increase"`
}

// PityConfig describes the guaranteed-rarity counter for one banner.
type PityConfig struct {
	Enabled     bool        `yaml:"enabled"`
	Ceiling     int         `yaml:"ceiling"`
	Target      rarity.Tier `yaml:"target"`
	ResetOnPull bool        `yaml:"reset_on_pull"`
	// CarryOver lets a successor banner inherit the counter. The link is
	// the explicit Family id, never inferred.
	CarryOver bool            `yaml:"carry_over"`
	Family    string          `yaml:"family,omitempty"`
	Soft      *SoftPityConfig `yaml:"soft,omitempty"`
}

// GuaranteeRule is one batch-level guarantee, independent of pity: if no
// result in a batch of at least MinBatchSize reaches MinTier, the last
// result is upgraded. MaxTriggers <= 0 means unlimited.
type GuaranteeRule struct {
	ID           string      `yaml:"id"`
	MinTier      rarity.Tier `yaml:"min_tier"`
	MinBatchSize int         `yaml:"min_batch"`
	MaxTriggers  int         `yaml:"max_triggers"`
}

// Banner is one summon offer. Treat a Banner obtained from the registry as
// read-only.
type Banner struct {
	ID     string
	Name   string
	Active bool

	StartAt time.Time
	EndAt   *time.Time

	// Rates maps tiers to percentage weights. Weights are renormalized to
	// sum to 100 before every roll, so a table that sums to e.g. 99.8 is
	// accepted as long as all weights are non-negative and at least one is
	// positive.
	Rates map[rarity.Tier]float64

	// Costs maps supported pull counts to the price of the whole batch.
	Costs map[int]currency.Cost

	Pity       PityConfig
	Guarantees []GuaranteeRule

	Featured []string
	// FeaturedBias is the probability of preferring the featured subset
	// when the rolled tier contains featured characters. Nil means "use
	// the engine default"; an explicit 0 disables the preference.
	FeaturedBias *float64
}

// IsActive reports whether the banner can be pulled at the given instant.
func (b *Banner) IsActive(now time.Time) bool {
	if !b.Active {
		return false
	}
	if now.Before(b.StartAt) {
		return false
	}
	if b.EndAt != nil && !b.EndAt.After(now) {
		return false
	}
	return true
}

// IsFeatured reports whether a character id is on this banner's featured
// list. Lists are short, a linear scan is fine.
func (b *Banner) IsFeatured(id string) bool {
	for _, f := range b.Featured {
		if f == id {
			return true
		}
	}
	return false
}

// SupportedPulls returns the pull counts this banner sells, ascending.
func (b *Banner) SupportedPulls() []int {
	out := make([]int, 0, len(b.Costs))
	for n := range b.Costs {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// PityKey returns the key pity state is tracked under. Banners that share
// a carry-over family share one counter; everything else gets its own.
func (b *Banner) PityKey() string {
	if b.Pity.CarryOver && b.Pity.Family != "" {
		return "family:" + b.Pity.Family
	}
	return b.ID
}
