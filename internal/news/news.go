// Package news 定义抓取流水线的数据模型：订阅条目、文章、分类快照和整体快照。
package news

import "time"

// FormatVersion 快照格式版本，消费方据此判断字段含义。
const FormatVersion = "1.1.0"

// FeedEntry 订阅源中的一条原始条目（已清洗摘要、已通过第一轮过滤）。
// Link 是分类内去重的唯一键。
type FeedEntry struct {
	Title     string
	Link      string
	Published time.Time
	Author    string
	Summary   string
}

// Article 经过正文抓取和补全后的文章。
type Article struct {
	ID           uint32    `json:"id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Date         time.Time `json:"date"`
	Author       string    `json:"author"`
	Category     string    `json:"category"`
	CategoryName string    `json:"category_name"`
	ImageURL     *string   `json:"image_url"`
	Excerpt      string    `json:"excerpt"`
	Content      *string   `json:"content"`
	ReadTime     int       `json:"read_time"`
	Domain       string    `json:"domain"`
	HasImage     bool      `json:"has_image"`
}

// CategorySnapshot 单个分类的输出。
type CategorySnapshot struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Articles    []*Article `json:"articles"`
	Count       int        `json:"count"`
}

// Metadata 一次运行的元信息。
type Metadata struct {
	RunID           string    `json:"run_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	TotalArticles   int       `json:"total_articles"`
	DurationSeconds float64   `json:"crawl_duration_seconds"`
	Version         string    `json:"version"`
	CategoryOrder   []string  `json:"category_order"`
	Partial         bool      `json:"partial"`
}

// Snapshot 一次运行的完整输出，是唯一对外可见的产物。
type Snapshot struct {
	FrontPage  []*Article                   `json:"capa"`
	Categories map[string]*CategorySnapshot `json:"categories"`
	Metadata   Metadata                     `json:"metadata"`
}

// NewCategorySnapshot 根据已排序的文章列表构建分类快照。
func NewCategorySnapshot(name, description string, articles []*Article) *CategorySnapshot {
	if articles == nil {
		articles = []*Article{}
	}
	return &CategorySnapshot{
		Name:        name,
		Description: description,
		Articles:    articles,
		Count:       len(articles),
	}
}
