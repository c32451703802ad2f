// Package database 将每次运行的快照归档到 SQLite，只写不读回，不影响下一次抓取。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
)

// DB 归档数据库连接。
type DB struct {
	*sql.DB
	path string
}

// Open 打开或创建归档数据库，必要时创建所在目录。
func Open(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("归档数据库路径为空")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// 设置 WAL 模式，静态站点读取归档时不阻塞写入
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("启用外键约束失败: %w", err)
	}

	logger.Infof("[database] 数据库已打开: %s", dbPath)
	return &DB{DB: db, path: dbPath}, nil
}

// Path 返回数据库文件路径。
func (db *DB) Path() string {
	return db.path
}

// Migrate 创建归档表和索引。
func (db *DB) Migrate() error {
	migrations := []string{
		// 每次运行一行
		`CREATE TABLE IF NOT EXISTS crawl_runs (
			id TEXT PRIMARY KEY,
			generated_at DATETIME NOT NULL,
			total_articles INTEGER NOT NULL,
			duration_seconds REAL NOT NULL,
			version TEXT NOT NULL,
			partial BOOLEAN DEFAULT 0
		)`,
		// 每次运行中每个分类的每篇文章一行
		`CREATE TABLE IF NOT EXISTS run_articles (
			run_id TEXT NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			position INTEGER NOT NULL,
			article_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			link TEXT NOT NULL,
			published_at DATETIME,
			author TEXT DEFAULT '',
			domain TEXT DEFAULT '',
			image_url TEXT,
			read_time INTEGER DEFAULT 1,
			front_page BOOLEAN DEFAULT 0,
			PRIMARY KEY (run_id, category, position)
		)`,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_run_articles_link ON run_articles(link)`,
		`CREATE INDEX IF NOT EXISTS idx_run_articles_article_id ON run_articles(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_crawl_runs_generated_at ON crawl_runs(generated_at)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			logger.Warnf("[database] 创建索引失败: %v", err)
		}
	}
	return nil
}

// SaveSnapshot 在一个事务中写入一次运行的元信息和全部分类文章。
// 首页文章通过 front_page 标记，不单独存储。
func (db *DB) SaveSnapshot(ctx context.Context, snap *news.Snapshot) error {
	if snap.Metadata.RunID == "" {
		return fmt.Errorf("快照缺少 run_id")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	md := snap.Metadata
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO crawl_runs (id, generated_at, total_articles, duration_seconds, version, partial)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		md.RunID, md.GeneratedAt.UTC().Format(time.RFC3339), md.TotalArticles, md.DurationSeconds, md.Version, md.Partial,
	); err != nil {
		return fmt.Errorf("写入运行记录失败: %w", err)
	}

	front := make(map[*news.Article]bool, len(snap.FrontPage))
	for _, a := range snap.FrontPage {
		front[a] = true
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_articles (run_id, category, position, article_id, title, link, published_at,
		 author, domain, image_url, read_time, front_page)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for _, id := range md.CategoryOrder {
		cat, ok := snap.Categories[id]
		if !ok {
			continue
		}
		for pos, a := range cat.Articles {
			var image sql.NullString
			if a.ImageURL != nil {
				image = sql.NullString{String: *a.ImageURL, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				md.RunID, id, pos, int64(a.ID), a.Title, a.Link, a.Date.UTC().Format(time.RFC3339),
				a.Author, a.Domain, image, a.ReadTime, front[a],
			); err != nil {
				return fmt.Errorf("写入文章失败: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	logger.Infof("[database] 已归档运行 %s (%d 篇)", md.RunID, md.TotalArticles)
	return nil
}

// Close 关闭数据库连接。
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}
