// Package config 读取抓取任务的 YAML 配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 顶层配置结构。
type Config struct {
	Categories []CategoryConfig `yaml:"categories"`
	Crawl      CrawlConfig      `yaml:"crawl"`
	FrontPage  FrontPageConfig  `yaml:"front_page"`
	Blacklist  BlacklistConfig  `yaml:"blacklist"`
	Output     OutputConfig     `yaml:"output"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Log        LogConfig        `yaml:"log"`
}

// CategoryConfig 一个分类及其订阅源，声明顺序即抓取顺序。
type CategoryConfig struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Feeds       []string `yaml:"feeds"`
}

// CrawlConfig 抓取参数。
type CrawlConfig struct {
	MaxEntriesPerFeed      int    `yaml:"max_entries_per_feed"`
	MaxArticlesPerCategory int    `yaml:"max_articles_per_category"`
	SummaryMaxLen          int    `yaml:"summary_max_len"`
	ExcerptMaxLen          int    `yaml:"excerpt_max_len"`
	WordsPerMinute         int    `yaml:"words_per_minute"`
	RequestTimeoutSec      int    `yaml:"request_timeout_sec"`
	PaceIntervalMs         int    `yaml:"pace_interval_ms"`
	UserAgent              string `yaml:"user_agent"`
	AcceptLanguage         string `yaml:"accept_language"`
	UntitledPlaceholder    string `yaml:"untitled_placeholder"`
	AuthorPlaceholder      string `yaml:"author_placeholder"`

	// RunTimeoutSec 整次运行的时限（秒），到时停止抓取并输出已有结果。0 表示不限。
	RunTimeoutSec int `yaml:"run_timeout_sec"`
}

// RequestTimeout 单次请求超时。
func (c CrawlConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// PaceInterval 同一主机两次文章请求的最小间隔。
func (c CrawlConfig) PaceInterval() time.Duration {
	return time.Duration(c.PaceIntervalMs) * time.Millisecond
}

// RunTimeout 整次运行时限，0 表示不限。
func (c CrawlConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSec) * time.Second
}

// FrontPageConfig 首页选取配置。
type FrontPageConfig struct {
	Category string `yaml:"category"`
	Count    int    `yaml:"count"`
}

// BlacklistConfig 敏感词配置，为空时使用内置列表。
type BlacklistConfig struct {
	Keywords []string `yaml:"keywords"`
}

// OutputConfig 快照输出配置。
type OutputConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig SQLite 归档配置，Path 为空表示不归档。
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容，填充默认值并校验。
func Parse(data []byte) (*Config, error) {
	expanded := os.Expand(string(data), os.Getenv)

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	setDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	c := &cfg.Crawl
	if c.MaxEntriesPerFeed == 0 {
		c.MaxEntriesPerFeed = 5
	}
	if c.MaxArticlesPerCategory == 0 {
		c.MaxArticlesPerCategory = 10
	}
	if c.SummaryMaxLen == 0 {
		c.SummaryMaxLen = 300
	}
	if c.ExcerptMaxLen == 0 {
		c.ExcerptMaxLen = 200
	}
	if c.WordsPerMinute == 0 {
		c.WordsPerMinute = 200
	}
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = 15
	}
	if c.PaceIntervalMs == 0 {
		c.PaceIntervalMs = 500
	}
	if c.UntitledPlaceholder == "" {
		c.UntitledPlaceholder = "Untitled"
	}
	if c.AuthorPlaceholder == "" {
		c.AuthorPlaceholder = "Editorial Staff"
	}
	if cfg.FrontPage.Category == "" {
		cfg.FrontPage.Category = "capa"
	}
	if cfg.FrontPage.Count == 0 {
		cfg.FrontPage.Count = 6
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "public/data/latest.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if strings.HasPrefix(cfg.Archive.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Archive.Path = home + cfg.Archive.Path[1:]
		}
	}
}

// Validate 校验分类配置：至少一个分类，id 和名称非空且 id 唯一。
// 分类可以没有订阅源，输出为空分类。
func (cfg *Config) Validate() error {
	if len(cfg.Categories) == 0 {
		return errors.New("配置中没有任何分类")
	}
	seen := make(map[string]struct{}, len(cfg.Categories))
	for i, cat := range cfg.Categories {
		if strings.TrimSpace(cat.ID) == "" {
			return fmt.Errorf("第 %d 个分类缺少 id", i+1)
		}
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("分类 %s 缺少名称", cat.ID)
		}
		if _, dup := seen[cat.ID]; dup {
			return fmt.Errorf("分类 id 重复: %s", cat.ID)
		}
		seen[cat.ID] = struct{}{}
	}
	if cfg.Crawl.MaxEntriesPerFeed < 0 || cfg.Crawl.MaxArticlesPerCategory < 0 || cfg.FrontPage.Count < 0 {
		return errors.New("数量上限不能为负数")
	}
	return nil
}

// CategoryIDs 按声明顺序返回分类 id。
func (cfg *Config) CategoryIDs() []string {
	ids := make([]string, len(cfg.Categories))
	for i, cat := range cfg.Categories {
		ids[i] = cat.ID
	}
	return ids
}
