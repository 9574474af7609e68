package news

// Analysis is the annotated result of one clustering pass.
type Analysis struct {
	Clusters []*Cluster
	// TotalItems counts usable items before the cluster cap.
	TotalItems int
	Capped     bool
	// PlatformsCovered counts distinct platforms among usable items.
	PlatformsCovered int
}

// Analyze clusters the pool and sets each cluster's weight and category.
func Analyze(pool []Item) Analysis {
	pool = FilterUsable(pool)
	seen := make(map[string]struct{})
	for _, it := range pool {
		seen[it.Platform] = struct{}{}
	}

	clusters, capped := BuildClusters(pool)
	for _, c := range clusters {
		c.Weight = Weight(c)
		c.Category = Categorize(c)
	}
	return Analysis{
		Clusters:         clusters,
		TotalItems:       len(pool),
		Capped:           capped,
		PlatformsCovered: len(seen),
	}
}

// CrossPlatformCount returns how many clusters span several platforms.
func (a Analysis) CrossPlatformCount() int {
	n := 0
	for _, c := range a.Clusters {
		if c.CrossPlatform() {
			n++
		}
	}
	return n
}
