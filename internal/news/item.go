package news

// Extra holds the optional per-platform fields carried next to a headline.
type Extra struct {
	Description string
	Summary     string
	Category    string
}

// Item is one entry of one platform's trending list.
type Item struct {
	Platform    string
	Rank        int
	Title       string
	URL         string
	Translation string
	Extra       Extra
}

// Usable reports whether the item carries either a title or a link.
func (it Item) Usable() bool {
	return it.Title != "" || it.URL != ""
}

// PlatformInfo describes a known source and its authority weight.
type PlatformInfo struct {
	ID     string
	Name   string
	Weight float64
}

// Platforms lists the known sources ordered by authority.
var Platforms = []PlatformInfo{
	{ID: "xinhua_news", Name: "Xinhua", Weight: 4.0},
	{ID: "baidu_top", Name: "Baidu Top", Weight: 3.0},
	{ID: "weibo_hot", Name: "Weibo Hot Search", Weight: 2.5},
	{ID: "tencent_wechat_hot", Name: "WeChat Hot", Weight: 2.0},
	{ID: "thepaper_news", Name: "The Paper", Weight: 1.5},
	{ID: "ladymax_news", Name: "LadyMax", Weight: 1.0},
}

// DefaultPlatformWeight applies to sources missing from Platforms.
const DefaultPlatformWeight = 1.0

// PlatformWeight returns the authority weight of a platform id.
func PlatformWeight(id string) float64 {
	for _, p := range Platforms {
		if p.ID == id {
			return p.Weight
		}
	}
	return DefaultPlatformWeight
}

// KnownPlatform reports whether id is in Platforms.
func KnownPlatform(id string) bool {
	for _, p := range Platforms {
		if p.ID == id {
			return true
		}
	}
	return false
}

// FilterUsable drops items that have neither a title nor a link.
func FilterUsable(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Usable() {
			out = append(out, it)
		}
	}
	return out
}
