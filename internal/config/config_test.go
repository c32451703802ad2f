package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
categories:
  - id: capa
    name: Capa
    feeds:
      - https://example.com/rss
`

func TestSetDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Crawl.MaxEntriesPerFeed", cfg.Crawl.MaxEntriesPerFeed, 5},
		{"Crawl.MaxArticlesPerCategory", cfg.Crawl.MaxArticlesPerCategory, 10},
		{"Crawl.SummaryMaxLen", cfg.Crawl.SummaryMaxLen, 300},
		{"Crawl.ExcerptMaxLen", cfg.Crawl.ExcerptMaxLen, 200},
		{"Crawl.WordsPerMinute", cfg.Crawl.WordsPerMinute, 200},
		{"Crawl.RequestTimeoutSec", cfg.Crawl.RequestTimeoutSec, 15},
		{"Crawl.PaceIntervalMs", cfg.Crawl.PaceIntervalMs, 500},
		{"Crawl.UntitledPlaceholder", cfg.Crawl.UntitledPlaceholder, "Untitled"},
		{"Crawl.AuthorPlaceholder", cfg.Crawl.AuthorPlaceholder, "Editorial Staff"},
		{"Crawl.RunTimeoutSec", cfg.Crawl.RunTimeoutSec, 0},
		{"FrontPage.Category", cfg.FrontPage.Category, "capa"},
		{"FrontPage.Count", cfg.FrontPage.Count, 6},
		{"Output.Path", cfg.Output.Path, "public/data/latest.json"},
		{"Archive.Path", cfg.Archive.Path, ""},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "console"},
	}

	for _, c := range checks {
		switch want := c.want.(type) {
		case int:
			if c.got.(int) != want {
				t.Errorf("%s: got %v, want %v", c.name, c.got, want)
			}
		case string:
			if c.got.(string) != want {
				t.Errorf("%s: got %v, want %v", c.name, c.got, want)
			}
		}
	}
}

func TestSetDefaults_DoesNotOverride(t *testing.T) {
	cfg := &Config{
		Crawl:     CrawlConfig{MaxEntriesPerFeed: 3, PaceIntervalMs: 1000, AuthorPlaceholder: "Redação"},
		FrontPage: FrontPageConfig{Category: "destaques", Count: 4},
		Output:    OutputConfig{Path: "/tmp/out.json"},
	}
	setDefaults(cfg)

	if cfg.Crawl.MaxEntriesPerFeed != 3 {
		t.Errorf("MaxEntriesPerFeed should not be overridden: got %d", cfg.Crawl.MaxEntriesPerFeed)
	}
	if cfg.Crawl.PaceInterval() != time.Second {
		t.Errorf("PaceInterval should not be overridden: got %v", cfg.Crawl.PaceInterval())
	}
	if cfg.Crawl.AuthorPlaceholder != "Redação" {
		t.Errorf("AuthorPlaceholder should not be overridden: got %s", cfg.Crawl.AuthorPlaceholder)
	}
	if cfg.FrontPage.Category != "destaques" || cfg.FrontPage.Count != 4 {
		t.Errorf("FrontPage should not be overridden: got %+v", cfg.FrontPage)
	}
	if cfg.Output.Path != "/tmp/out.json" {
		t.Errorf("Output.Path should not be overridden: got %s", cfg.Output.Path)
	}
}

func TestLoad_Minimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noticias.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Feeds[0] != "https://example.com/rss" {
		t.Errorf("分类解析错误: %+v", cfg.Categories)
	}
	if cfg.Crawl.RequestTimeout() != 15*time.Second {
		t.Errorf("RequestTimeout 默认值错误: %v", cfg.Crawl.RequestTimeout())
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("NOTICIAS_OUTPUT", "/srv/site/latest.json")
	cfg, err := Parse([]byte(minimalYAML + "output:\n  path: ${NOTICIAS_OUTPUT}\n"))
	if err != nil {
		t.Fatalf("Parse 失败: %v", err)
	}
	if cfg.Output.Path != "/srv/site/latest.json" {
		t.Errorf("环境变量未展开: %s", cfg.Output.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("期望文件不存在时返回错误")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"无分类", "crawl:\n  max_entries_per_feed: 5\n", "没有任何分类"},
		{"缺少 id", "categories:\n  - name: Capa\n", "缺少 id"},
		{"缺少名称", "categories:\n  - id: capa\n", "缺少名称"},
		{"id 重复", "categories:\n  - id: a\n    name: A\n  - id: a\n    name: B\n", "重复"},
		{"负数上限", minimalYAML + "front_page:\n  count: -1\n", "负数"},
		{"无订阅源可以通过", "categories:\n  - id: vazio\n    name: Vazio\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("不应报错: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("期望错误包含 %q，得到 %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("../../configs/noticias.yaml")
	if err != nil {
		t.Fatalf("加载内置配置失败: %v", err)
	}
	want := []string{"capa", "tech", "ciencia", "brasil", "retro", "variedades"}
	got := cfg.CategoryIDs()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("分类顺序不匹配: %v", got)
	}
	for _, cat := range cfg.Categories {
		if len(cat.Feeds) == 0 {
			t.Errorf("分类 %s 没有订阅源", cat.ID)
		}
	}
}
