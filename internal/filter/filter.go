// Package filter 实现基于关键词黑名单的敏感内容过滤。
package filter

import (
	"strings"

	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
)

// DefaultKeywords 内置的葡萄牙语敏感词列表（死亡、暴力、事故、灾难）。
// 匹配方式为小写子串匹配，因此会有误伤和漏网，保持原样。
var DefaultKeywords = []string{
	// 死亡
	"morte",
	"morto",
	"morta",
	"mortos",
	"mortas",
	"morre",
	"morrem",
	"morreu",
	"morreram",
	"morrer",
	// 暴力与犯罪
	"assassinato",
	"assassinatos",
	"assassinado",
	"assassinada",
	"homicídio",
	"homicidio",
	"sangue",
	"estupro",
	"estuprada",
	"estuprador",
	"corpo encontrado",
	"tiroteio",
	"baleado",
	"baleada",
	"esfaqueado",
	"esfaqueada",
	"facadas",
	"atropelado",
	"atropelada",
	"atropelamento",
	// 致命事故
	"afogado",
	"afogada",
	"afogados",
	"afogamento",
	"incêndio",
	"incendio",
	// 悲剧
	"tragédia",
	"tragedia",
	"massacre",
	"chacina",
	"violência",
	"violencia",
	"suicídio",
	"suicidio",
}

// Blacklist 敏感词过滤器。构造后只读，可在多个 goroutine 间共享。
type Blacklist struct {
	keywords []string
}

// New 创建过滤器。keywords 为空时使用 DefaultKeywords。
// 关键词统一转为小写，空白项被忽略。
func New(keywords []string) *Blacklist {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	b := &Blacklist{keywords: make([]string, 0, len(keywords))}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		b.keywords = append(b.keywords, kw)
	}
	return b
}

// Keywords 返回过滤器使用的关键词副本。
func (b *Blacklist) Keywords() []string {
	out := make([]string, len(b.keywords))
	copy(out, b.keywords)
	return out
}

// Match 返回 title 与 body 拼接文本中命中的第一个关键词。
func (b *Blacklist) Match(title, body string) (string, bool) {
	text := strings.ToLower(title + " " + body)
	for _, kw := range b.keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// IsBlocked 判断内容是否包含敏感词，命中时记录被过滤的标题。
func (b *Blacklist) IsBlocked(title, body string) bool {
	kw, hit := b.Match(title, body)
	if hit {
		logger.Infof("[filter] 已过滤(命中 %q): %s", kw, news.Shorten(title, 50))
	}
	return hit
}
