// Package crawler 按分类抓取订阅源并补全文章。
package crawler

import (
	"context"
	"errors"

	"github.com/iabetor/noticias/internal/article"
	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
)

const (
	defaultMaxArticles   = 10  // 每个分类最多保留的文章数
	defaultExcerptMaxLen = 200 // 摘要最大字符数
	defaultWordsPerMin   = 200
)

// FeedReader 读取单个订阅源。
type FeedReader interface {
	ReadFeed(ctx context.Context, feedURL string) []news.FeedEntry
}

// Enricher 抓取文章页面并补全信息。
type Enricher interface {
	Enrich(ctx context.Context, pageURL string) article.Result
}

// Limiter 在抓取文章前按来源主机限速。
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Blocker 判断内容是否命中敏感词。
type Blocker interface {
	IsBlocked(title, body string) bool
}

// Category 一个待抓取的分类。
type Category struct {
	ID    string
	Name  string
	Feeds []string
}

// Options 抓取参数，零值字段使用默认值。
type Options struct {
	MaxArticles         int
	ExcerptMaxLen       int
	WordsPerMinute      int
	UntitledPlaceholder string // 与订阅源读取器一致，用于判断是否需要页面标题替换
}

// Crawler 顺序抓取一个分类下的所有订阅源。
type Crawler struct {
	reader   FeedReader
	enricher Enricher
	limiter  Limiter
	blocker  Blocker
	opts     Options
}

// New 创建分类抓取器。
func New(reader FeedReader, enricher Enricher, limiter Limiter, blocker Blocker, opts Options) *Crawler {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = defaultMaxArticles
	}
	if opts.ExcerptMaxLen <= 0 {
		opts.ExcerptMaxLen = defaultExcerptMaxLen
	}
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = defaultWordsPerMin
	}
	if opts.UntitledPlaceholder == "" {
		opts.UntitledPlaceholder = "Untitled"
	}
	return &Crawler{
		reader:   reader,
		enricher: enricher,
		limiter:  limiter,
		blocker:  blocker,
		opts:     opts,
	}
}

// Crawl 依次读取分类下的订阅源，按链接去重（先到先得），补全正文后做第二轮过滤，
// 达到 MaxArticles 立即停止。返回按时间倒序排列的文章。
// ctx 结束（或限速等待会越过截止时间）时停止抓取，返回已收集的文章和对应错误。
// 其他文章级失败不丢弃条目，只让对应字段为空。
func (c *Crawler) Crawl(ctx context.Context, cat Category) ([]*news.Article, error) {
	log := logger.With("category", cat.ID)

	articles := make([]*news.Article, 0, c.opts.MaxArticles)
	seen := make(map[string]struct{})

feeds:
	for _, feedURL := range cat.Feeds {
		if err := ctx.Err(); err != nil {
			news.SortByDate(articles)
			return articles, err
		}

		for _, entry := range c.reader.ReadFeed(ctx, feedURL) {
			if entry.Link == "" {
				log.Warnf("[crawler] 条目缺少链接，跳过: %s", entry.Title)
				continue
			}
			if _, dup := seen[entry.Link]; dup {
				continue
			}
			seen[entry.Link] = struct{}{}

			if err := c.limiter.Wait(ctx, entry.Link); err != nil {
				if stop := stopErr(ctx, err); stop != nil {
					news.SortByDate(articles)
					return articles, stop
				}
				// 链接无法解析出主机时照常抓取，由补全结果体现失败
				log.Warnf("[crawler] 无法限速 %s: %v", entry.Link, err)
			}

			log.Infof("[crawler] 处理: %s", news.Shorten(entry.Title, 50))
			res := c.enricher.Enrich(ctx, entry.Link)
			if err := ctx.Err(); err != nil {
				// 抓取被中断的文章不完整，不计入结果
				news.SortByDate(articles)
				return articles, err
			}

			// 正文可能包含摘要中没有的敏感内容，命中则整条丢弃
			if c.blocker.IsBlocked(entry.Title, res.Content) {
				continue
			}

			articles = append(articles, c.buildArticle(cat, entry, res))
			if len(articles) >= c.opts.MaxArticles {
				break feeds
			}
		}
	}

	news.SortByDate(articles)
	return articles, nil
}

// stopErr 判断限速等待的错误是否意味着运行需要停止：ctx 已结束，
// 或者等待会越过 ctx 的截止时间。
func stopErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *Crawler) buildArticle(cat Category, entry news.FeedEntry, res article.Result) *news.Article {
	title := entry.Title
	if title == c.opts.UntitledPlaceholder && res.Title != "" {
		title = res.Title
	}

	excerpt := news.Excerpt(res.Content, c.opts.ExcerptMaxLen)
	if excerpt == "" {
		excerpt = entry.Summary
	}

	a := &news.Article{
		ID:           news.ArticleID(entry.Link),
		Title:        title,
		Link:         entry.Link,
		Date:         entry.Published,
		Author:       entry.Author,
		Category:     cat.ID,
		CategoryName: cat.Name,
		Excerpt:      excerpt,
		ReadTime:     news.ReadTime(res.Content, c.opts.WordsPerMinute),
		Domain:       news.Domain(entry.Link),
		HasImage:     res.HasImage(),
	}
	if res.HasContent() {
		content := res.Content
		a.Content = &content
	}
	if res.HasImage() {
		image := res.ImageURL
		a.ImageURL = &image
	}
	return a
}
