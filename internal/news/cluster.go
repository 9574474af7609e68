package news

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MaxClusterItems bounds the pool handed to BuildClusters.
const MaxClusterItems = 500

const (
	// SimilarityThreshold is the ratio a pair must exceed to be merged.
	SimilarityThreshold = 0.5
	// MinSharedTerms merges a pair regardless of ratio.
	MinSharedTerms = 2
)

// Cluster groups items judged to describe the same story.
type Cluster struct {
	Items     []Item
	Platforms map[string]struct{}
	Keywords  string
	Titles    []string
	Weight    float64
	Category  string
}

func newCluster(seed Item, key string) *Cluster {
	c := &Cluster{
		Platforms: make(map[string]struct{}),
		Keywords:  key,
	}
	c.add(seed)
	return c
}

func (c *Cluster) add(it Item) {
	c.Items = append(c.Items, it)
	c.Platforms[it.Platform] = struct{}{}
	if it.Title != "" {
		c.Titles = append(c.Titles, it.Title)
	}
}

// PlatformCount returns the number of distinct platforms in the cluster.
func (c *Cluster) PlatformCount() int {
	return len(c.Platforms)
}

// CrossPlatform reports whether more than one platform carries the story.
func (c *Cluster) CrossPlatform() bool {
	return len(c.Platforms) > 1
}

// PlatformList returns the platform ids sorted alphabetically.
func (c *Cluster) PlatformList() []string {
	out := make([]string, 0, len(c.Platforms))
	for p := range c.Platforms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// BuildClusters groups the pool in a single forward pass. Each unassigned
// item seeds a cluster and claims every later unassigned item similar to it.
// The result depends on pool order. Pools above MaxClusterItems are cut and
// capped is reported as true.
func BuildClusters(pool []Item) (clusters []*Cluster, capped bool) {
	if len(pool) > MaxClusterItems {
		pool = pool[:MaxClusterItems]
		capped = true
	}

	keys := make([]string, len(pool))
	for i, it := range pool {
		keys[i] = Keywords(it.Title)
	}

	processed := make([]bool, len(pool))
	for i := range pool {
		if processed[i] {
			continue
		}
		c := newCluster(pool[i], keys[i])
		processed[i] = true

		for j := i + 1; j < len(pool); j++ {
			if processed[j] {
				continue
			}
			if Similar(keys[i], keys[j]) {
				c.add(pool[j])
				processed[j] = true
			}
		}
		clusters = append(clusters, c)
	}
	return clusters, capped
}

// Similar reports whether two normalized keys describe the same story.
func Similar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Ratio(a, b) > SimilarityThreshold || SharedTerms(a, b) >= MinSharedTerms
}

// Ratio returns the Ratcliff/Obershelp similarity of two strings over runes.
// A comparison that panics yields 0.
func Ratio(a, b string) (ratio float64) {
	defer func() {
		if r := recover(); r != nil {
			ratio = 0
		}
	}()
	m := difflib.NewMatcher(runes(a), runes(b))
	return m.Ratio()
}

// SharedTerms counts the whitespace-separated terms found in both keys.
func SharedTerms(a, b string) int {
	terms := make(map[string]struct{})
	for _, t := range strings.Fields(a) {
		terms[t] = struct{}{}
	}
	seen := make(map[string]struct{})
	n := 0
	for _, t := range strings.Fields(b) {
		if _, ok := terms[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		n++
	}
	return n
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
