// Package pipeline 依次抓取所有分类，挑选首页并组装快照。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/iabetor/noticias/internal/article"
	"github.com/iabetor/noticias/internal/config"
	"github.com/iabetor/noticias/internal/crawler"
	"github.com/iabetor/noticias/internal/filter"
	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
	"github.com/iabetor/noticias/internal/ratelimit"
	"github.com/iabetor/noticias/internal/rss"
	"github.com/iabetor/noticias/internal/selection"
	"github.com/iabetor/noticias/internal/webclient"
)

// CategoryCrawler 抓取单个分类。
type CategoryCrawler interface {
	Crawl(ctx context.Context, cat crawler.Category) ([]*news.Article, error)
}

// Pipeline 是主编排器，分类之间严格顺序执行。
type Pipeline struct {
	categories []config.CategoryConfig
	crawler    CategoryCrawler
	front      selection.FrontPage

	state    *StateMachine
	limiter  *ratelimit.HostLimiter // 仅用于统计，可为 nil
	now      func() time.Time
	newRunID func() string
}

// New 根据配置创建 Pipeline，并装配订阅源读取、文章补全、限速和过滤组件。
func New(cfg *config.Config) *Pipeline {
	client := webclient.New(webclient.Options{
		Timeout:        cfg.Crawl.RequestTimeout(),
		UserAgent:      cfg.Crawl.UserAgent,
		AcceptLanguage: cfg.Crawl.AcceptLanguage,
	})
	blacklist := filter.New(cfg.Blacklist.Keywords)
	logger.Debugf("[pipeline] 敏感词 %d 个", len(blacklist.Keywords()))

	reader := rss.NewReader(client, blacklist, rss.Options{
		MaxEntries:          cfg.Crawl.MaxEntriesPerFeed,
		SummaryMaxLen:       cfg.Crawl.SummaryMaxLen,
		UntitledPlaceholder: cfg.Crawl.UntitledPlaceholder,
		AuthorPlaceholder:   cfg.Crawl.AuthorPlaceholder,
	})
	enricher := article.NewEnricher(client, article.ReadabilityExtractor{})
	limiter := ratelimit.NewHostLimiter(cfg.Crawl.PaceInterval())

	c := crawler.New(reader, enricher, limiter, blacklist, crawler.Options{
		MaxArticles:         cfg.Crawl.MaxArticlesPerCategory,
		ExcerptMaxLen:       cfg.Crawl.ExcerptMaxLen,
		WordsPerMinute:      cfg.Crawl.WordsPerMinute,
		UntitledPlaceholder: cfg.Crawl.UntitledPlaceholder,
	})

	p := NewWithCrawler(cfg.Categories, c, selection.FrontPage{
		Category: cfg.FrontPage.Category,
		Count:    cfg.FrontPage.Count,
	})
	p.limiter = limiter
	return p
}

// NewWithCrawler 使用指定的分类抓取器创建 Pipeline。
func NewWithCrawler(categories []config.CategoryConfig, c CategoryCrawler, front selection.FrontPage) *Pipeline {
	p := &Pipeline{
		categories: categories,
		crawler:    c,
		front:      front,
		state:      NewStateMachine(),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
	p.state.SetOnChange(func(from, to Stage) {
		logger.Debugf("[pipeline] 阶段 %s → %s", from, to)
	})
	return p
}

// Stage 返回当前运行阶段。
func (p *Pipeline) Stage() Stage {
	return p.state.Current()
}

// Run 执行一次完整抓取并返回快照。
// ctx 结束时跳过剩余订阅源和分类，仍返回 Partial 标记的快照，
// 即使中止发生在最后一个订阅源内部。分类抓取返回的其他错误视为致命错误。
func (p *Pipeline) Run(ctx context.Context) (*news.Snapshot, error) {
	start := p.now()
	runID := p.newRunID()
	logger.Infof("[pipeline] 开始抓取 run=%s，共 %d 个分类", runID, len(p.categories))

	p.state.Transition(StageCrawling)

	var all []*news.Article
	categories := make(map[string]*news.CategorySnapshot, len(p.categories))
	order := make([]string, 0, len(p.categories))
	partial := false

	stop := func(cause error) {
		logger.Warnf("[pipeline] 运行被中止 (%v)，跳过剩余分类", cause)
		partial = true
		p.state.Transition(StageCanceled)
	}

	for _, cat := range p.categories {
		order = append(order, cat.ID)

		if !partial && ctx.Err() != nil {
			stop(ctx.Err())
		}
		if partial {
			categories[cat.ID] = news.NewCategorySnapshot(cat.Name, cat.Description, nil)
			continue
		}

		logger.Infof("[pipeline] 分类: %s", cat.Name)
		articles, err := p.crawler.Crawl(ctx, crawler.Category{ID: cat.ID, Name: cat.Name, Feeds: cat.Feeds})
		switch {
		case err != nil && !isCancel(err):
			return nil, fmt.Errorf("分类 %s 抓取失败: %w", cat.ID, err)
		case err != nil:
			stop(err)
		case ctx.Err() != nil:
			// 订阅源读取会吞掉取消错误，分类抓取可能正常返回
			stop(ctx.Err())
		}

		all = append(all, articles...)
		categories[cat.ID] = news.NewCategorySnapshot(cat.Name, cat.Description, articles)
		logger.Infof("[pipeline] %s: %d 篇", cat.Name, len(articles))
	}

	p.state.Transition(StageSelecting)
	front := p.front.Select(all)

	elapsed := p.now().Sub(start)
	snap := &news.Snapshot{
		FrontPage:  front,
		Categories: categories,
		Metadata: news.Metadata{
			RunID:           runID,
			GeneratedAt:     p.now(),
			TotalArticles:   len(all),
			DurationSeconds: math.Round(elapsed.Seconds()*100) / 100,
			Version:         news.FormatVersion,
			CategoryOrder:   order,
			Partial:         partial,
		},
	}
	p.state.Transition(StageDone)

	logger.Infof("[pipeline] 抓取完成: %d 篇文章，首页 %d 篇，耗时 %.1fs", len(all), len(front), elapsed.Seconds())
	if p.limiter != nil {
		logger.Debugf("[pipeline] 共访问 %d 个文章站点", p.limiter.Hosts())
	}
	return snap, nil
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
