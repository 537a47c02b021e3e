package pricing

import "math"

// MinCostForGems finds the minimum-cost pack combination yielding at least
// targetGems. Unbounded quantities; first-time doubles are modeled as
// one-off variants but the DP may legitimately pick the doubled variant at
// most once per pack because a second copy costs the same and yields less,
// so it is never chosen twice in an optimal plan.
func MinCostForGems(cat Catalog, targetGems int64, first FirstTimeState) Plan {
	if targetGems <= 0 || len(cat.Packs) == 0 {
		return Plan{Currency: cat.Currency}
	}
	variants := expandVariants(cat, first)

	var maxGems int64
	for _, v := range variants {
		if v.gems > maxGems {
			maxGems = v.gems
		}
	}
	if maxGems == 0 {
		return Plan{Currency: cat.Currency}
	}
	// allow overshoot by one largest pack: slightly over target can be
	// cheaper than hitting it exactly
	limit := int(targetGems + maxGems)

	const inf = int(^uint(0) >> 1)
	cost := make([]int, limit+1)   // min cost to reach exactly g gems
	choice := make([]int, limit+1) // variant index chosen at g
	prev := make([]int, limit+1)
	for g := range cost {
		cost[g] = inf
		choice[g] = -1
		prev[g] = -1
	}
	cost[0] = 0

	for g := 0; g <= limit; g++ {
		if cost[g] == inf {
			continue
		}
		for i, v := range variants {
			ng := g + int(v.gems)
			if ng > limit {
				ng = limit
			}
			if c := cost[g] + v.price; c < cost[ng] {
				cost[ng] = c
				choice[ng] = i
				prev[ng] = g
			}
		}
	}

	bestG, bestCost := int(targetGems), cost[targetGems]
	for g := int(targetGems); g <= limit; g++ {
		if cost[g] < bestCost {
			bestG, bestCost = g, cost[g]
		}
	}
	if bestCost == inf {
		return Plan{Currency: cat.Currency}
	}

	counts := map[variant]int{}
	for g := bestG; g > 0 && choice[g] != -1; g = prev[g] {
		counts[variants[choice[g]]]++
	}
	return buildPlan(cat, counts)
}

// MaxGemsUnderBudget finds the most gems obtainable for budgetCents via
// unbounded knapsack over the pack variants. When prices are pre-tax the
// effective budget is reduced so the taxed total stays within budget.
func MaxGemsUnderBudget(cat Catalog, budgetCents int, first FirstTimeState) Plan {
	if budgetCents <= 0 || len(cat.Packs) == 0 {
		return Plan{Currency: cat.Currency}
	}
	variants := expandVariants(cat, first)

	effBudget := budgetCents
	if cat.TaxRate > 0 {
		effBudget = int(math.Floor(float64(budgetCents) / (1 + cat.TaxRate)))
	}
	if effBudget <= 0 {
		return Plan{Currency: cat.Currency}
	}

	gems := make([]int64, effBudget+1) // max gems at exactly cost c
	choice := make([]int, effBudget+1)
	for c := range choice {
		choice[c] = -1
	}
	for c := 0; c <= effBudget; c++ {
		for i, v := range variants {
			nc := c + v.price
			if nc > effBudget {
				continue
			}
			if g := gems[c] + v.gems; g > gems[nc] {
				gems[nc] = g
				choice[nc] = i
			}
		}
	}

	bestC := 0
	for c := 0; c <= effBudget; c++ {
		if gems[c] > gems[bestC] {
			bestC = c
		}
	}

	counts := map[variant]int{}
	for c := bestC; c > 0 && choice[c] != -1; c -= variants[choice[c]].price {
		counts[variants[choice[c]]]++
	}
	return buildPlan(cat, counts)
}
