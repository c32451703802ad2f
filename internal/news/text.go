package news

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// Ellipsis 截断摘要时追加的标记。
const Ellipsis = "..."

// ArticleID 由链接计算稳定的文章 ID：去除首尾空白后取 SHA-256 的前 4 字节（大端）。
// 同一链接在任何进程、任何实现中得到相同结果。
func ArticleID(link string) uint32 {
	sum := sha256.Sum256([]byte(strings.TrimSpace(link)))
	return binary.BigEndian.Uint32(sum[:4])
}

// Excerpt 从正文生成摘要。不超过 maxLen 个字符时原样返回（去除首尾空白），
// 否则在 maxLen 以内最后一个空格处截断并追加省略号。
func Excerpt(content string, maxLen int) string {
	text := strings.TrimSpace(content)
	if text == "" {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	cut := string([]rune(text)[:maxLen])
	if i := strings.LastIndex(cut, " "); i >= 0 {
		cut = cut[:i]
	}
	return cut + Ellipsis
}

// Truncate 按字符数截断，不做单词边界处理，也不追加省略号。
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}

// ReadTime 按每分钟 wpm 个词估算阅读时间（分钟），四舍六入五成双，最少 1 分钟。
func ReadTime(text string, wpm int) int {
	if wpm <= 0 {
		wpm = 200
	}
	words := len(strings.Fields(text))
	minutes := int(math.RoundToEven(float64(words) / float64(wpm)))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Domain 返回链接的主机部分（保留端口），去掉开头的 "www."。解析失败返回空串。
func Domain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// SortByDate 按时间倒序稳定排序，时间相同保持原有顺序。零值时间视为最旧。
func SortByDate(articles []*Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date.After(articles[j].Date)
	})
}

// Shorten 截取前 n 个字符用于日志，超出时追加省略号。
func Shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + Ellipsis
}
