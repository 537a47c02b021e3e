// Package pricing plans real-money gem pack purchases: the cheapest way to
// afford a summon budget, or the most gems a budget can buy. The engine
// never touches real money; this is advisory math over a store catalog.
package pricing

import (
	"math"
	"sort"
)

// Pack models one purchasable SKU.
type Pack struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Gems            int64  `json:"gems" yaml:"gems"`
	BonusGems       int64  `json:"bonus_gems,omitempty" yaml:"bonus_gems,omitempty"`
	FirstTimeDouble bool   `json:"first_time_double,omitempty" yaml:"first_time_double,omitempty"`
	PriceCents      int    `json:"price_cents" yaml:"price_cents"`
}

// Catalog is a regional pack catalog. If prices are tax-inclusive set
// TaxRate to zero.
type Catalog struct {
	Currency string  `json:"currency" yaml:"currency"`
	TaxRate  float64 `json:"tax_rate" yaml:"tax_rate"`
	Packs    []Pack  `json:"packs" yaml:"packs"`
}

// FirstTimeState marks packs whose first-purchase double is still unused.
type FirstTimeState map[string]bool

// Purchase is one line item of a plan.
type Purchase struct {
	PackID    string `json:"pack_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int    `json:"unit_price_cents"`
	UnitGems  int64  `json:"unit_gems"`
	Subtotal  int    `json:"subtotal_cents"`
}

// Plan is a complete purchase recommendation.
type Plan struct {
	Purchases  []Purchase `json:"purchases"`
	SubCents   int        `json:"subtotal_cents"`
	TaxCents   int        `json:"tax_cents"`
	TotalCents int        `json:"total_cents"`
	TotalGems  int64      `json:"total_gems"`
	Currency   string     `json:"currency"`
}

// variant is a pack as it can actually be bought: first-time-doubled packs
// appear twice, once doubled and once plain.
type variant struct {
	id    string
	name  string
	gems  int64
	price int
}

func expandVariants(cat Catalog, first FirstTimeState) []variant {
	var out []variant
	for _, p := range cat.Packs {
		if p.FirstTimeDouble && first != nil && first[p.ID] {
			out = append(out, variant{
				id:    p.ID + "#x2",
				name:  p.Name + " (x2)",
				gems:  p.Gems*2 + p.BonusGems, // double applies to base gems only
				price: p.PriceCents,
			})
		}
		out = append(out, variant{
			id:    p.ID,
			name:  p.Name,
			gems:  p.Gems + p.BonusGems,
			price: p.PriceCents,
		})
	}
	return out
}

func applyTax(sub int, rate float64) (tax, total int) {
	if rate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * rate))
	return t, sub + t
}

// buildPlan turns variant counts into a deterministic, sorted plan.
func buildPlan(cat Catalog, counts map[variant]int) Plan {
	plan := Plan{Currency: cat.Currency}
	for v, qty := range counts {
		sub := v.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:    v.id,
			Name:      v.name,
			Qty:       qty,
			UnitPrice: v.price,
			UnitGems:  v.gems,
			Subtotal:  sub,
		})
		plan.SubCents += sub
		plan.TotalGems += v.gems * int64(qty)
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		return plan.Purchases[i].PackID < plan.Purchases[j].PackID
	})
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, cat.TaxRate)
	return plan
}
