package docs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Digest 文档摘要，作为不透明输入供合成器消费
type Digest struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Sections []string `json:"sections"`
	Links    []string `json:"links"`
}

// Empty 没有文档时的空摘要，流水线照常继续
func Empty() *Digest {
	return &Digest{Sections: []string{}, Links: []string{}}
}

var (
	headingRe = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	hrefRe    = regexp.MustCompile(`(?i)href="(https?://[^"]+)"`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
)

// Fetch 抓取文档页并用 readability 提取正文
func Fetch(ctx context.Context, pageURL string) (*Digest, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid docs url %q", pageURL)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch docs page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docs page returned status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	return FromArticle(article.Title, article.Content, article.TextContent), nil
}

// FromArticle 从已提取的标题/HTML/正文构建摘要，便于测试
func FromArticle(title, html, text string) *Digest {
	d := &Digest{
		Title:    strings.TrimSpace(title),
		Text:     strings.TrimSpace(text),
		Sections: []string{},
		Links:    []string{},
	}

	for _, m := range headingRe.FindAllStringSubmatch(html, -1) {
		section := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
		if section != "" {
			d.Sections = append(d.Sections, section)
		}
	}

	seen := map[string]struct{}{}
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		link := m[1]
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		d.Links = append(d.Links, link)
	}
	return d
}
