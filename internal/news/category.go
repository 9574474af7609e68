package news

import "strings"

// General is returned when no category keyword matches.
const General = "general"

// Category pairs a topic label with the keywords that select it.
type Category struct {
	Name     string
	Keywords []string
}

// Categories is checked in order; the first match wins.
var Categories = []Category{
	{Name: "business", Keywords: []string{"经济", "金融", "公司", "集团", "股", "市场", "消费", "债务", "银行"}},
	{Name: "military", Keywords: []string{"军", "舰", "国防", "武器", "海军", "航母", "导弹", "战"}},
	{Name: "technology", Keywords: []string{"科技", "技术", "创新", "研发", "人工智能", "ai", "芯片", "数字"}},
	{Name: "politics", Keywords: []string{"政治", "主席", "习近平", "政府", "党", "领导", "政策", "外交"}},
	{Name: "weather", Keywords: []string{"台风", "天气", "暴雨", "气象", "洪水", "地震", "灾害"}},
	{Name: "social", Keywords: []string{"教育", "医疗", "就业", "房", "民生", "社会", "疫情"}},
	{Name: "international", Keywords: []string{"美国", "欧洲", "日本", "朝鲜", "俄罗斯", "国际", "全球"}},
}

// CategoryNamesZH maps category labels to their Chinese display names.
var CategoryNamesZH = map[string]string{
	"business":      "商业",
	"military":      "军事",
	"politics":      "政治",
	"technology":    "科技",
	"weather":       "天气",
	"social":        "社会",
	"international": "国际",
	General:         "综合",
}

// Categorize assigns a topic label to the cluster from its titles.
func Categorize(c *Cluster) string {
	if c == nil || len(c.Titles) == 0 {
		return General
	}
	text := strings.ToLower(strings.Join(c.Titles, " "))
	for _, cat := range Categories {
		if containsAny(text, cat.Keywords) {
			return cat.Name
		}
	}
	return General
}

// containsAny does plain substring matching; headlines are not space-delimited.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}
