package article

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/webclient"
)

// maxPageSize 单个页面最多读取的字节数
const maxPageSize = 8 << 20

// Enricher 抓取文章页面并补全正文、预览图和标题。
type Enricher struct {
	client    *webclient.Client
	extractor Extractor
}

// NewEnricher 创建补全器。extractor 为 nil 时使用 ReadabilityExtractor。
func NewEnricher(client *webclient.Client, extractor Extractor) *Enricher {
	if extractor == nil {
		extractor = ReadabilityExtractor{}
	}
	return &Enricher{client: client, extractor: extractor}
}

// Enrich 抓取 pageURL 并提取信息。总是返回结果，错误体现在 Status 和 Err 中：
// 请求失败时所有字段为空；提取失败时只有失败的那一项为空。
func (e *Enricher) Enrich(ctx context.Context, pageURL string) Result {
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		if isTimeout(err) {
			logger.Warnf("[article] 抓取超时 %s", pageURL)
			return Result{Status: StatusTimeout, Err: err}
		}
		logger.Warnf("[article] 请求失败 %s: %v", pageURL, err)
		return Result{Status: StatusRequestError, Err: err}
	}

	base, _ := url.Parse(pageURL)
	res := Result{Status: StatusOK}

	// 正文、图片、标题三项互不依赖，任何一项失败不影响其他两项
	content, err := e.extractor.ExtractText(body, base)
	if err != nil {
		logger.Errorf("[article] 正文提取失败 %s: %v", pageURL, err)
		res.Status = StatusExtractError
		res.Err = err
	} else {
		res.Content = content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		logger.Errorf("[article] 元信息解析失败 %s: %v", pageURL, err)
		res.Status = StatusExtractError
		res.Err = errors.Join(res.Err, err)
		return res
	}
	res.ImageURL, res.Title = pageMeta(doc, base)
	return res
}

// fetch 下载页面并按响应声明或页面 meta 中的编码转换为 UTF-8。
func (e *Enricher) fetch(ctx context.Context, pageURL string) (string, error) {
	resp, err := e.client.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
