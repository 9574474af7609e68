package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/trenddigest/internal/cache"
)

// MaxContentRunes is how much article text is kept for a summary prompt.
const MaxContentRunes = 3000

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// ArticleContent is full article content
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// Fetcher downloads article pages and extracts their main text.
type Fetcher struct {
	HTTP     *http.Client
	Cache    *cache.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NewFetcher returns a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, c *cache.Cache, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		HTTP:     &http.Client{Timeout: timeout},
		Cache:    c,
		CacheTTL: 6 * time.Hour,
		Logger:   log.With("component", "scraper"),
	}
}

// SkipURL reports whether url is a search results page rather than an article.
func SkipURL(url string) bool {
	return url == "" || strings.Contains(url, "baidu.com/s") || strings.Contains(url, "weibo.cn/search")
}

// ExtractFullArticle gets the main text of the article at url.
func (f *Fetcher) ExtractFullArticle(ctx context.Context, url string) (*ArticleContent, error) {
	key := cache.GenerateKey("article", url)
	if f.Cache != nil {
		if v, ok := f.Cache.Get(key); ok {
			if a, ok := v.(*ArticleContent); ok {
				return a, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	doc.Find("script, style, nav, header, footer").Remove()

	content := cleanContent(extractContentBySource(doc, url))
	if content == "" {
		return nil, fmt.Errorf("can't get content")
	}

	article := &ArticleContent{
		Title:   extractTitle(doc),
		Content: content,
		URL:     url,
	}
	if f.Cache != nil {
		ttl := f.CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		f.Cache.Set(key, article, ttl)
	}
	return article, nil
}

// siteSelectors lists paragraph selectors for sites with a known layout.
var siteSelectors = []struct {
	host      string
	selectors []string
}{
	{"xinhuanet.com", []string{"#detail p", ".main-aticle p", "#p-detail p"}},
	{"news.cn", []string{"#detail p", ".main-aticle p"}},
	{"thepaper.cn", []string{".index_cententWrap__Jv8jK p", ".news_txt", "article p"}},
	{"qq.com", []string{".content-article p", ".rich_media_content p", "#js_content p"}},
	{"ladymax.cn", []string{".article-content p", ".content p"}},
}

// extractContentBySource gets content by news site
func extractContentBySource(doc *goquery.Document, url string) string {
	for _, site := range siteSelectors {
		if strings.Contains(url, site.host) {
			if content := collectParagraphs(doc, site.selectors, 10, 1); content != "" {
				return content
			}
			break
		}
	}
	return extractGenericContent(doc)
}

// extractGenericContent is universal parser for any site
func extractGenericContent(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		".text p",
		"p",
	}
	return collectParagraphs(doc, selectors, 20, 3)
}

// collectParagraphs tries selectors in order and stops once enough
// paragraphs longer than minRunes were found.
func collectParagraphs(doc *goquery.Document, selectors []string, minRunes, enough int) string {
	var paragraphs []string
	seen := make(map[string]struct{})

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if utf8.RuneCountInString(text) <= minRunes {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			paragraphs = append(paragraphs, text)
		})
		if len(paragraphs) >= enough {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// extractTitle gets article title
func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		".article-title",
		".headline",
		"title",
	}

	for _, selector := range selectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

var junkIndicators = []string{
	"责任编辑", "版权所有", "扫一扫", "分享到", "点击查看", "相关阅读", "免责声明",
	"cookie", "copyright",
}

// cleanContent drops boilerplate lines and cuts the text to MaxContentRunes.
func cleanContent(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		junk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				junk = true
				break
			}
		}
		if !junk {
			lines = append(lines, line)
		}
	}

	result := strings.Join(lines, "\n")
	if utf8.RuneCountInString(result) > MaxContentRunes {
		result = string([]rune(result)[:MaxContentRunes])
	}
	return result
}
