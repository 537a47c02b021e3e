package engine

import (
	"time"

	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/gacha"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// Record is one committed summon transaction. Immutable once appended.
type Record struct {
	ID            string         `json:"id"`
	BannerID      string         `json:"banner_id"`
	Timestamp     time.Time      `json:"timestamp"`
	Results       []gacha.Result `json:"results"`
	Cost          currency.Cost  `json:"cost"`
	PityBefore    int            `json:"pity_before"`
	AnyGuaranteed bool           `json:"any_guaranteed"`
}

// History is the bounded, append-only summon log. When the cap is reached
// the oldest record is evicted, FIFO.
type History struct {
	cap     int
	records []Record
}

func NewHistory(cap int) *History {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &History{cap: cap}
}

func (h *History) Append(r Record) {
	h.records = append(h.records, r)
	if len(h.records) > h.cap {
		h.records = append(h.records[:0:0], h.records[len(h.records)-h.cap:]...)
	}
}

// All returns the retained records in insertion order.
func (h *History) All() []Record {
	return append([]Record(nil), h.records...)
}

// ByBanner returns the retained records for one banner, in insertion order.
func (h *History) ByBanner(bannerID string) []Record {
	var out []Record
	for _, r := range h.records {
		if r.BannerID == bannerID {
			out = append(out, r)
		}
	}
	return out
}

func (h *History) Len() int { return len(h.records) }

func (h *History) restore(records []Record) {
	h.records = append([]Record(nil), records...)
	if len(h.records) > h.cap {
		h.records = h.records[len(h.records)-h.cap:]
	}
}

// Stats are aggregates derived from the history log. They are recomputed
// on every call and never persisted, so they cannot drift from the log.
type Stats struct {
	TotalSummons         int                 `json:"total_summons"`
	TotalPulls           int                 `json:"total_pulls"`
	ByTier               map[rarity.Tier]int `json:"by_tier"`
	NewCharacters        int                 `json:"new_characters"`
	PityActivations      int                 `json:"pity_activations"`
	GuaranteeActivations int                 `json:"guarantee_activations"`
	// Streaks are measured against the "high" tier threshold: dry pulls
	// are below it, lucky pulls at or above it.
	LongestDryStreak int `json:"longest_dry_streak"`
	LuckiestStreak   int `json:"luckiest_streak"`
}

// Statistics folds the retained log into aggregates. Pulls are walked in
// commit order, positions within a batch in index order.
func (h *History) Statistics(high rarity.Tier) Stats {
	s := Stats{ByTier: make(map[rarity.Tier]int)}
	dry, lucky := 0, 0
	for _, rec := range h.records {
		s.TotalSummons++
		for _, r := range rec.Results {
			s.TotalPulls++
			s.ByTier[r.Tier]++
			if r.IsNew {
				s.NewCharacters++
			}
			if r.PityTriggered {
				s.PityActivations++
			} else if r.WasGuaranteed {
				s.GuaranteeActivations++
			}
			if r.Tier >= high {
				lucky++
				dry = 0
			} else {
				dry++
				lucky = 0
			}
			if dry > s.LongestDryStreak {
				s.LongestDryStreak = dry
			}
			if lucky > s.LuckiestStreak {
				s.LuckiestStreak = lucky
			}
		}
	}
	return s
}
