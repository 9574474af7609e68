package digest

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/trenddigest/internal/metrics"
	"github.com/deusflow/trenddigest/internal/news"
)

// ErrNoItems is returned when the pool holds nothing to digest.
var ErrNoItems = errors.New("no trending items to digest")

const (
	// MaxTopStories bounds the top_stories list.
	MaxTopStories = 5
	// MaxAppearances bounds the appearances listed per story.
	MaxAppearances = 5
	// ExclusiveThreshold is the weight an exclusive must exceed.
	ExclusiveThreshold = 2.0

	englishTitleRunes   = 100
	exclusiveTitleRunes = 60

	// UntranslatedTitle stands in when no member carries a translation.
	UntranslatedTitle = "Story requires translation"
)

// Assembler ranks analyzed clusters into a Digest.
type Assembler struct {
	// Summarizer is optional; nil always yields the fallback summary.
	Summarizer Summarizer
	Logger     *slog.Logger
	Now        func() time.Time
}

// Assemble builds the digest of the given type from an analysis.
func (a *Assembler) Assemble(ctx context.Context, typ Type, an news.Analysis) (*Digest, error) {
	if an.TotalItems == 0 || len(an.Clusters) == 0 {
		return nil, ErrNoItems
	}
	log := a.logger()

	clusters := make([]*news.Cluster, len(an.Clusters))
	copy(clusters, an.Clusters)
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Weight > clusters[j].Weight
	})

	var cross, single []*news.Cluster
	for _, c := range clusters {
		if c.CrossPlatform() {
			cross = append(cross, c)
		} else {
			single = append(single, c)
		}
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	bt := now().In(Beijing)

	d := &Digest{
		DigestType:  typ,
		AsOf:        bt.Format(time.RFC3339),
		Date:        bt.Format(time.DateOnly),
		TimeLabel:   typ.Label(),
		BeijingTime: bt.Format("15:04"),
		TopStories:  []Story{},
		Metrics: Metrics{
			TotalStoriesAnalyzed: an.TotalItems,
			CrossPlatformStories: len(cross),
			UniqueStories:        len(single),
			PlatformsCovered:     an.PlatformsCovered,
		},
	}

	for i, c := range cross {
		if i >= MaxTopStories {
			break
		}
		story := a.story(ctx, log, i+1, c)
		d.TopStories = append(d.TopStories, story)
	}

	d.PlatformExclusives = exclusives(single)

	log.Info("digest assembled",
		"type", typ,
		"top_stories", len(d.TopStories),
		"exclusives", len(d.PlatformExclusives),
		"clusters", len(clusters))
	return d, nil
}

func (a *Assembler) story(ctx context.Context, log *slog.Logger, rank int, c *news.Cluster) Story {
	s := Story{
		Rank:          rank,
		Weight:        round2(c.Weight),
		Platforms:     c.PlatformList(),
		PlatformCount: c.PlatformCount(),
		EnglishTitle:  EnglishTitle(c),
		Category:      c.Category,
		Appearances:   Appearances(c),
	}
	if len(c.Titles) > 0 {
		s.PrimaryTitle = c.Titles[0]
	}

	sum := a.summarize(ctx, log, c, s.EnglishTitle)
	s.Summary = sum.English
	s.SummaryZH = sum.Chinese
	return s
}

func (a *Assembler) summarize(ctx context.Context, log *slog.Logger, c *news.Cluster, english string) Summary {
	fallback := FallbackSummary(c.PlatformCount(), c.Category)
	if a.Summarizer == nil {
		metrics.Global.IncrementFallbackSummaries()
		return fallback
	}

	req := Request{
		Titles:        c.Titles,
		Category:      c.Category,
		PlatformCount: c.PlatformCount(),
		EnglishTitle:  english,
	}
	if english == UntranslatedTitle {
		req.EnglishTitle = ""
	}
	for _, it := range c.Items {
		if desc := firstNonEmpty(it.Extra.Description, it.Extra.Summary); desc != "" {
			req.Descriptions = append(req.Descriptions, desc)
		}
		if it.URL != "" {
			req.URLs = append(req.URLs, it.URL)
		}
	}

	sum, err := a.Summarizer.Summarize(ctx, req)
	if err != nil {
		log.Warn("summary unavailable, using fallback", "keywords", c.Keywords, "error", err)
		metrics.Global.IncrementFallbackSummaries()
		return fallback
	}
	if sum.Empty() {
		metrics.Global.IncrementFallbackSummaries()
		return fallback
	}
	metrics.Global.IncrementGeneratedSummaries()
	return sum
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger.With("component", "digest")
	}
	return slog.Default().With("component", "digest")
}

// EnglishTitle returns the first member translation, trimmed and capped.
func EnglishTitle(c *news.Cluster) string {
	for _, it := range c.Items {
		t := strings.TrimSpace(it.Translation)
		for strings.HasSuffix(t, "...") || strings.HasSuffix(t, "…") {
			t = strings.TrimSuffix(strings.TrimSuffix(t, "..."), "…")
			t = strings.TrimSpace(t)
		}
		if t != "" {
			return truncateRunes(t, englishTitleRunes)
		}
	}
	return UntranslatedTitle
}

// Appearances lists where a story placed, best rank first.
func Appearances(c *news.Cluster) []Appearance {
	out := make([]Appearance, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, Appearance{Platform: it.Platform, Rank: it.Rank})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	if len(out) > MaxAppearances {
		out = out[:MaxAppearances]
	}
	return out
}

// exclusives expects single-platform clusters sorted by weight descending.
func exclusives(single []*news.Cluster) map[string]Exclusive {
	out := make(map[string]Exclusive)
	for _, p := range news.Platforms {
		for _, c := range single {
			if _, ok := c.Platforms[p.ID]; !ok {
				continue
			}
			if c.Weight > ExclusiveThreshold {
				title := c.Keywords
				if len(c.Titles) > 0 {
					title = c.Titles[0]
				}
				out[p.ID] = Exclusive{
					Title:  truncateRunes(title, exclusiveTitleRunes),
					Weight: round2(c.Weight),
				}
			}
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
