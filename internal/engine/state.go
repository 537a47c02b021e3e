package engine

import (
	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/gacha"
)

// State is the serializable snapshot of everything mutable the engine owns
// for one player. It is what crosses the durable-storage boundary; banner
// definitions and catalog content are configuration, not state, and are
// not included.
//
// Pity counters are keyed by pity key (banner id, or the shared family key
// for carry-over banners). Guarantee counters are keyed banner id → rule id.
type State struct {
	Currencies map[currency.Kind]int64      `json:"currencies"`
	Roster     []string                     `json:"roster"`
	Pity       map[string]gacha.PityTracker `json:"pity_counters"`
	Guarantees map[string]map[string]int    `json:"guarantee_counters"`
	History    []Record                     `json:"history"`
}
