package news

import (
	"strings"
	"testing"
	"time"
)

func TestArticleID_Stable(t *testing.T) {
	link := "https://g1.globo.com/tecnologia/noticia/1.html"
	a := ArticleID(link)
	if a != ArticleID(link) {
		t.Fatal("同一链接应得到相同 ID")
	}
	if a != ArticleID("  "+link+"\n") {
		t.Error("首尾空白不应影响 ID")
	}
	if a == ArticleID(link+"?x=1") {
		t.Error("不同链接不应得到相同 ID")
	}
}

func TestArticleID_KnownValue(t *testing.T) {
	// sha256("") = e3b0c442...
	if got := ArticleID(""); got != 0xe3b0c442 {
		t.Errorf("ArticleID(\"\") = %#x", got)
	}
}

func TestExcerpt(t *testing.T) {
	short := "Texto curto."
	if got := Excerpt("  "+short+"  ", 200); got != short {
		t.Errorf("短文本应原样返回: %q", got)
	}
	if got := Excerpt("", 200); got != "" {
		t.Errorf("空文本应返回空串: %q", got)
	}

	long := strings.Repeat("palavra ", 40) // 320 字符
	got := Excerpt(long, 200)
	if !strings.HasSuffix(got, Ellipsis) {
		t.Fatalf("长文本应追加省略号: %q", got)
	}
	body := strings.TrimSuffix(got, Ellipsis)
	if len([]rune(body)) > 200 {
		t.Errorf("截断后超过上限: %d", len([]rune(body)))
	}
	if strings.HasSuffix(body, " ") || strings.HasSuffix(body, "palavr") {
		t.Errorf("应在单词边界截断: %q", body)
	}

	// 幂等：对已截断的结果再取摘要不变
	if again := Excerpt(got, 300); again != got {
		t.Errorf("短于上限的文本应保持不变: %q", again)
	}
}

func TestExcerpt_NoSpace(t *testing.T) {
	s := strings.Repeat("á", 250)
	got := Excerpt(s, 200)
	if got != strings.Repeat("á", 200)+Ellipsis {
		t.Errorf("无空格时应整段保留上限字符: %d runes", len([]rune(got)))
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("ação", 2); got != "aç" {
		t.Errorf("Truncate 按字符截断失败: %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("短文本不应变化: %q", got)
	}
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{50, 1},
		{200, 1},
		{300, 2}, // 1.5 -> 2
		{500, 2}, // 2.5 -> 2
		{700, 4}, // 3.5 -> 4
		{1000, 5},
	}
	for _, tt := range tests {
		text := strings.TrimSpace(strings.Repeat("x ", tt.words))
		if got := ReadTime(text, 200); got != tt.want {
			t.Errorf("ReadTime(%d 词) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

func TestDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.bbc.com/portuguese/x": "bbc.com",
		"https://g1.globo.com/rss/g1/":     "g1.globo.com",
		"http://localhost:8080/a":          "localhost:8080",
		"https://wwwx.example.com/":        "wwwx.example.com",
		"":                                 "",
		"://bad":                           "",
	}
	for link, want := range tests {
		if got := Domain(link); got != want {
			t.Errorf("Domain(%q) = %q, want %q", link, got, want)
		}
	}
}

func TestSortByDate(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	articles := []*Article{
		{Title: "old", Date: base.Add(-time.Hour)},
		{Title: "zero"},
		{Title: "tie-1", Date: base},
		{Title: "new", Date: base.Add(time.Hour)},
		{Title: "tie-2", Date: base},
	}
	SortByDate(articles)

	want := []string{"new", "tie-1", "tie-2", "old", "zero"}
	for i, a := range articles {
		if a.Title != want[i] {
			t.Errorf("位置 %d: got %s, want %s", i, a.Title, want[i])
		}
	}
}

func TestNewCategorySnapshot_Empty(t *testing.T) {
	cs := NewCategorySnapshot("Tech", "desc", nil)
	if cs.Count != 0 || cs.Articles == nil {
		t.Errorf("空分类应有非 nil 空列表: %+v", cs)
	}
}
