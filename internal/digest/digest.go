// Package digest turns annotated story clusters into the scheduled digest record.
package digest

// Appearance is one placement of a story on a platform list.
type Appearance struct {
	Platform string `json:"platform"`
	Rank     int    `json:"rank"`
}

// Story is a cross-platform cluster rendered for readers.
type Story struct {
	Rank          int          `json:"rank"`
	Weight        float64      `json:"weight"`
	Platforms     []string     `json:"platforms"`
	PlatformCount int          `json:"platform_count"`
	PrimaryTitle  string       `json:"primary_title"`
	EnglishTitle  string       `json:"english_title"`
	Summary       string       `json:"summary"`
	SummaryZH     string       `json:"summary_zh"`
	Category      string       `json:"category"`
	Appearances   []Appearance `json:"appearances"`
}

// Metrics summarizes the pool a digest was built from.
type Metrics struct {
	TotalStoriesAnalyzed int `json:"total_stories_analyzed"`
	CrossPlatformStories int `json:"cross_platform_stories"`
	UniqueStories        int `json:"unique_stories"`
	PlatformsCovered     int `json:"platforms_covered"`
}

// Exclusive is the strongest story seen on only one platform.
type Exclusive struct {
	Title  string  `json:"title"`
	Weight float64 `json:"weight"`
}

// Digest is the artifact written once per admitted run.
type Digest struct {
	DigestType         Type                 `json:"digest_type"`
	AsOf               string               `json:"as_of"`
	Date               string               `json:"date"`
	TimeLabel          string               `json:"time_label"`
	BeijingTime        string               `json:"beijing_time"`
	TopStories         []Story              `json:"top_stories"`
	Metrics            Metrics              `json:"metrics"`
	PlatformExclusives map[string]Exclusive `json:"platform_exclusives,omitempty"`
}
