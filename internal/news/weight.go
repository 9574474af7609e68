package news

import "math"

const (
	// RankDecay discounts each position below the top of a list.
	RankDecay = 0.9
	// CrossPlatformExponent scales the bonus for stories on several platforms.
	CrossPlatformExponent = 1.5
)

// Weight scores a cluster from its members' platform authority and rank.
func Weight(c *Cluster) float64 {
	if c == nil {
		return 0
	}
	total := 0.0
	for _, it := range c.Items {
		rank := it.Rank
		if rank < 1 {
			rank = 1
		}
		total += PlatformWeight(it.Platform) * math.Pow(RankDecay, float64(rank-1))
	}
	if k := c.PlatformCount(); k > 1 {
		total *= math.Pow(float64(k), CrossPlatformExponent)
	}
	return total
}
