// Package selection 从所有分类的文章中挑选首页（Capa）文章。
package selection

import "github.com/iabetor/noticias/internal/news"

// DefaultCount 首页默认文章数。
const DefaultCount = 6

// Tier 一档候选条件。
type Tier func(a *news.Article) bool

// FrontPage 按档位依次填充首页：
//  1. 首页分类中有图的文章
//  2. 其他分类中有图的文章
//  3. 剩余任意文章
//
// 每档内保持输入顺序，同一篇文章（按对象身份）只选一次。填满后按时间倒序排列。
// 跨分类的重复链接不在这里去重。
type FrontPage struct {
	Category string
	Count    int
}

// Tiers 返回三档候选条件。
func (f FrontPage) Tiers() []Tier {
	return []Tier{
		func(a *news.Article) bool { return a.Category == f.Category && a.HasImage },
		func(a *news.Article) bool { return a.Category != f.Category && a.HasImage },
		func(*news.Article) bool { return true },
	}
}

// Select 从 all 中选出不超过 Count 篇文章。
func (f FrontPage) Select(all []*news.Article) []*news.Article {
	count := f.Count
	if count <= 0 {
		count = DefaultCount
	}

	selected := make([]*news.Article, 0, count)
	taken := make(map[*news.Article]struct{}, count)

	for _, match := range f.Tiers() {
		for _, a := range all {
			if len(selected) >= count {
				break
			}
			if _, ok := taken[a]; ok || !match(a) {
				continue
			}
			taken[a] = struct{}{}
			selected = append(selected, a)
		}
	}

	news.SortByDate(selected)
	return selected
}
