package currency

import "fmt"

// Tariff defines what a banner charges per pull-size tier. A ten-pull can
// either carry an explicit price or be derived from the single-pull price
// with a discount multiplier.
type Tariff struct {
	Kind            Kind    `yaml:"kind"`
	PerPull         int64   `yaml:"per_pull"`
	PerTenPull      int64   `yaml:"per_ten_pull,omitempty"`
	TenPullDiscount float64 `yaml:"ten_pull_discount,omitempty"`
}

// AmountFor returns the total price of n pulls under this tariff.
func (t Tariff) AmountFor(n int) int64 {
	if n <= 0 {
		return 0
	}
	if n >= 10 && t.tenPullAmount() > 0 {
		tens := int64(n / 10)
		rem := int64(n % 10)
		return tens*t.tenPullAmount() + rem*t.PerPull
	}
	return int64(n) * t.PerPull
}

func (t Tariff) tenPullAmount() int64 {
	if t.PerTenPull > 0 {
		return t.PerTenPull
	}
	if t.TenPullDiscount > 0 && t.TenPullDiscount < 1 {
		return int64(float64(10*t.PerPull)*t.TenPullDiscount + 0.5)
	}
	return 10 * t.PerPull
}

// Table expands the tariff into a cost per supported pull count. The table
// is built once at banner load so malformed tariffs fail there, never at
// summon time.
func (t Tariff) Table(pullCounts []int) (map[int]Cost, error) {
	if !t.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(t.Kind))
	}
	if t.PerPull <= 0 {
		return nil, fmt.Errorf("%w: per_pull %d", ErrInvalidAmount, t.PerPull)
	}
	if t.TenPullDiscount < 0 || t.TenPullDiscount > 1 {
		return nil, fmt.Errorf("ten_pull_discount %v out of [0,1]", t.TenPullDiscount)
	}
	out := make(map[int]Cost, len(pullCounts))
	for _, n := range pullCounts {
		if n <= 0 {
			return nil, fmt.Errorf("unsupported pull count %d", n)
		}
		out[n] = Cost{Kind: t.Kind, Amount: t.AmountFor(n)}
	}
	return out, nil
}
