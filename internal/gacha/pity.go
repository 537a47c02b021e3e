package gacha

import (
	"time"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// PityTracker is the per-(player, banner) counter state: pulls since the
// target tier last dropped. It has value semantics so the engine can
// advance a working copy during a batch and commit it atomically.
type PityTracker struct {
	Count     int       `json:"count"`
	LastReset time.Time `json:"last_reset,omitzero"`
}

// HardPityNext reports whether the next pull must yield the target tier.
// Consulted before rolling; when true the roller skips the draw entirely.
func (t PityTracker) HardPityNext(cfg banner.PityConfig) bool {
	return cfg.Enabled && t.Count >= cfg.Ceiling
}

// Observe advances the counter for one resolved pull. A target-tier pull
// resets the counter when the banner says so; every other pull increments
// it, clamped at the ceiling. The counter is never decremented otherwise.
func (t PityTracker) Observe(cfg banner.PityConfig, got rarity.Tier, now time.Time) PityTracker {
	if !cfg.Enabled {
		return t
	}
	if got == cfg.Target && cfg.ResetOnPull {
		return PityTracker{Count: 0, LastReset: now}
	}
	next := t
	if next.Count < cfg.Ceiling {
		next.Count++
	}
	return next
}
