package gacha

import "github.com/xtding233/recruit-engine/internal/rarity"

// Result is one pull's outcome within a summon batch. Exactly one of IsNew
// and IsDuplicate is true. WasGuaranteed covers both hard pity and batch
// guarantees; PityTriggered narrows it to hard pity for statistics.
type Result struct {
	CharacterID   string      `json:"character_id"`
	CharacterName string      `json:"character_name,omitempty"`
	Tier          rarity.Tier `json:"tier"`
	IsNew         bool        `json:"is_new"`
	IsDuplicate   bool        `json:"is_duplicate"`
	WasFeatured   bool        `json:"was_featured"`
	WasGuaranteed bool        `json:"was_guaranteed"`
	PityTriggered bool        `json:"pity_triggered"`
	Position      int         `json:"position"`
}
