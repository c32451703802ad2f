// Package rss 读取 RSS/Atom 订阅源，输出经过清洗和第一轮敏感词过滤的条目。
package rss

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/iabetor/noticias/internal/filter"
	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
	"github.com/iabetor/noticias/internal/webclient"
)

const (
	defaultMaxEntries    = 5   // 每个订阅源最多取的条目数
	defaultSummaryMaxLen = 300 // 摘要最大字符数
)

var spaceRe = regexp.MustCompile(`[\s\p{Zs}]+`)

// Options 读取器配置，零值字段使用默认值。
type Options struct {
	MaxEntries          int
	SummaryMaxLen       int
	UntitledPlaceholder string
	AuthorPlaceholder   string
}

// Reader 负责抓取并解析单个订阅源。
type Reader struct {
	client *webclient.Client
	parser *gofeed.Parser
	filter *filter.Blacklist
	policy *bluemonday.Policy
	opts   Options
	now    func() time.Time
}

// NewReader 创建订阅源读取器。
func NewReader(client *webclient.Client, blacklist *filter.Blacklist, opts Options) *Reader {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.SummaryMaxLen <= 0 {
		opts.SummaryMaxLen = defaultSummaryMaxLen
	}
	if opts.UntitledPlaceholder == "" {
		opts.UntitledPlaceholder = "Untitled"
	}
	if opts.AuthorPlaceholder == "" {
		opts.AuthorPlaceholder = "Editorial Staff"
	}
	return &Reader{
		client: client,
		parser: gofeed.NewParser(),
		filter: blacklist,
		policy: bluemonday.StrictPolicy(),
		opts:   opts,
		now:    time.Now,
	}
}

// ReadFeed 读取订阅源，按源中顺序返回最多 MaxEntries 条条目，命中敏感词的条目被丢弃。
// 抓取或解析失败只记录警告并返回空列表，不影响同分类的其他订阅源。
func (r *Reader) ReadFeed(ctx context.Context, feedURL string) []news.FeedEntry {
	logger.Infof("[rss] 抓取订阅源: %s", feedURL)

	feed, err := r.Fetch(ctx, feedURL)
	if err != nil {
		logger.Warnf("[rss] 订阅源解析失败 %s: %v", feedURL, err)
		return nil
	}
	if len(feed.Items) == 0 {
		logger.Warnf("[rss] 订阅源没有条目: %s", feedURL)
		return nil
	}

	return r.convertItems(feedURL, feed.Items)
}

// Fetch 抓取并解析订阅源。解析失败返回错误，解析成功但无条目时返回空 Items。
func (r *Reader) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	resp, err := r.client.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析失败: %w", err)
	}
	return feed, nil
}

// convertItems 截取前 MaxEntries 条，再逐条清洗和过滤。相对链接按订阅源地址解析。
func (r *Reader) convertItems(feedURL string, items []*gofeed.Item) []news.FeedEntry {
	base, _ := url.Parse(feedURL)

	if len(items) > r.opts.MaxEntries {
		items = items[:r.opts.MaxEntries]
	}

	entries := make([]news.FeedEntry, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = r.opts.UntitledPlaceholder
		}

		raw := item.Description
		if raw == "" {
			raw = item.Content
		}
		summary := news.Truncate(r.cleanHTML(raw), r.opts.SummaryMaxLen)

		if r.filter.IsBlocked(title, summary) {
			continue
		}

		entries = append(entries, news.FeedEntry{
			Title:     title,
			Link:      resolveLink(base, item.Link),
			Published: r.published(item),
			Author:    r.author(item),
			Summary:   summary,
		})
	}
	return entries
}

// resolveLink 把相对链接解析为绝对地址，无法解析的链接原样保留。
func resolveLink(base *url.URL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || base == nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}

func (r *Reader) published(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return r.now()
}

func (r *Reader) author(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, c := range item.DublinCoreExt.Creator {
			if strings.TrimSpace(c) != "" {
				return strings.TrimSpace(c)
			}
		}
	}
	return r.opts.AuthorPlaceholder
}

// cleanHTML 剥离 HTML 标签、还原实体并合并连续空白。
func (r *Reader) cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	// 标签之间补空格，避免相邻段落的文字粘连
	s = strings.ReplaceAll(s, "<", " <")
	s = html.UnescapeString(r.policy.Sanitize(s))
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
