package article

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
)

// Extractor 从 HTML 中提取正文纯文本。
type Extractor interface {
	ExtractText(rawHTML string, pageURL *url.URL) (string, error)
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// ReadabilityExtractor 先用 goquery 去掉表格、评论区、图片和脚本，再交给 go-readability 提取正文。
type ReadabilityExtractor struct{}

// ExtractText 返回正文纯文本，页面没有任何文字时返回空串。
func (ReadabilityExtractor) ExtractText(rawHTML string, pageURL *url.URL) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("解析 HTML 失败: %w", err)
	}

	doc.Find("script, style, noscript, iframe, embed, object, video, audio, canvas").Remove()
	doc.Find("table").Remove()
	doc.Find("img, picture, figure, svg").Remove()
	doc.Find("[class*='comment'], [id*='comment'], [class*='discussion'], [id*='discussion']").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("序列化 HTML 失败: %w", err)
	}

	art, err := readability.FromReader(strings.NewReader(cleaned), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability 提取失败: %w", err)
	}

	var buf strings.Builder
	if err := art.RenderText(&buf); err != nil {
		return "", fmt.Errorf("渲染正文失败: %w", err)
	}
	if text := normalizeText(buf.String()); text != "" {
		return text, nil
	}

	// readability 未识别出正文时退回到清理后的 body 文本
	return normalizeText(doc.Find("body").Text()), nil
}

// normalizeText 行内空白合并为一个空格，连续空行合并为一个空行。
func normalizeText(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text := strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// pageMeta 从页面元信息中取预览图和标题。
// 图片优先 og:image，其次 twitter:image，并相对 pageURL 解析为绝对地址；
// 标题优先 og:title，其次 <title>。
func pageMeta(doc *goquery.Document, pageURL *url.URL) (image, title string) {
	image = metaContent(doc, "meta[property='og:image']")
	if image == "" {
		image = metaContent(doc, "meta[name='twitter:image']")
	}
	if image != "" && pageURL != nil {
		if ref, err := url.Parse(image); err == nil {
			image = pageURL.ResolveReference(ref).String()
		}
	}

	title = metaContent(doc, "meta[property='og:title']")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return image, title
}

func metaContent(doc *goquery.Document, selector string) string {
	var content string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
			content = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return content
}
