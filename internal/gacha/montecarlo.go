package gacha

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/rarity"
)

// Goal selects what a simulation measures per trial.
type Goal string

const (
	// Pulls until the pity target tier first drops.
	GoalFirstTarget Goal = "first_target"
	// Pulls until a featured drop of the target tier.
	GoalFirstFeatured Goal = "first_featured"
	// Number of target-tier drops within a fixed pull budget.
	GoalFixedBudget Goal = "fixed_budget"
)

var ErrBadSimulation = errors.New("invalid simulation parameters")

// Stats summarizes one simulation run.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`

	Samples []int `json:"-"`
}

// Simulate runs seeded Monte Carlo trials against a banner's real
// pity/soft-pity configuration and returns the distribution of the chosen
// goal metric. The featured goal models the selector's featured-preference
// draw with the banner's bias (fallbackBias when the banner sets none);
// roster effects are ignored.
func Simulate(b *banner.Banner, goal Goal, trials, budget int, fallbackBias float64, seed uint64) (Stats, error) {
	if trials <= 0 {
		return Stats{}, ErrBadSimulation
	}
	if goal == GoalFixedBudget && budget <= 0 {
		return Stats{}, ErrBadSimulation
	}

	target := simTarget(b)
	bias := fallbackBias
	if b.FeaturedBias != nil {
		bias = *b.FeaturedBias
	}

	rng := NewSeededRNG(seed)
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(b, goal, budget, target, bias, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}

// simTarget is the tier a trial is hunting: the pity target when pity is
// enabled, otherwise the rarest tier with a positive weight.
func simTarget(b *banner.Banner) rarity.Tier {
	if b.Pity.Enabled {
		return b.Pity.Target
	}
	for _, t := range rarity.TiersDescending() {
		if b.Rates[t] > 0 {
			return t
		}
	}
	return rarity.Common
}

func simulateOne(b *banner.Banner, goal Goal, budget int, target rarity.Tier, bias float64, rng RandomSource) (int, error) {
	var tracker PityTracker
	draws := 0
	hits := 0
	for {
		draws++
		tier, err := RollRarity(b, tracker, rng)
		if err != nil {
			return 0, err
		}
		tracker = tracker.Observe(b.Pity, tier, time.Time{})

		isTarget := tier >= target
		switch goal {
		case GoalFirstTarget:
			if isTarget {
				return draws, nil
			}
		case GoalFirstFeatured:
			if isTarget {
				featured, err := Draw(bias, rng)
				if err != nil {
					return 0, err
				}
				if featured {
					return draws, nil
				}
			}
		case GoalFixedBudget:
			if isTarget {
				hits++
			}
			if draws >= budget {
				return hits, nil
			}
		default:
			return 0, ErrBadSimulation
		}
	}
}

// calcStats computes mean, population variance, and interpolated
// percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: cp,
	}
}
