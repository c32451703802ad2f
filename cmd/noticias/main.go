package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iabetor/noticias/internal/config"
	"github.com/iabetor/noticias/internal/database"
	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
	"github.com/iabetor/noticias/internal/output"
	"github.com/iabetor/noticias/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "configs/noticias.yaml", "配置文件路径")
	outputPath := flag.String("output", "", "快照输出路径，覆盖配置中的 output.path")
	timeout := flag.Duration("timeout", 0, "整次运行时限，覆盖配置中的 crawl.run_timeout_sec")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *timeout); err != nil {
		logger.Errorf("[main] %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, timeout time.Duration) error {
	logger.Infof("[main] 新闻抓取启动 (categories=%v, output=%s)", cfg.CategoryIDs(), cfg.Output.Path)

	// 收到 SIGINT/SIGTERM 时停止抓取，已收集的结果仍会写出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if timeout <= 0 {
		timeout = cfg.Crawl.RunTimeout()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	snap, err := pipeline.New(cfg).Run(ctx)
	if err != nil {
		return fmt.Errorf("抓取失败: %w", err)
	}

	if err := output.WriteFile(cfg.Output.Path, snap); err != nil {
		return fmt.Errorf("写入快照失败: %w", err)
	}

	if cfg.Archive.Path != "" {
		// 归档不受运行时限影响，失败只记录警告
		if err := archive(cfg.Archive.Path, snap); err != nil {
			logger.Warnf("[main] 归档失败: %v", err)
		}
	}

	printSummary(snap, cfg.Output.Path)
	logger.Info("[main] 新闻抓取结束")
	return nil
}

func archive(path string, snap *news.Snapshot) error {
	db, err := database.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	logger.Infof("[main] 已归档到 %s", db.Path())
	return nil
}

func printSummary(snap *news.Snapshot, path string) {
	fmt.Println("========================================")
	for _, id := range snap.Metadata.CategoryOrder {
		cat := snap.Categories[id]
		fmt.Printf("  %-12s %3d 篇\n", cat.Name, cat.Count)
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("  首页: %d 篇  总计: %d 篇  耗时: %.2fs\n",
		len(snap.FrontPage), snap.Metadata.TotalArticles, snap.Metadata.DurationSeconds)
	if snap.Metadata.Partial {
		fmt.Println("  注意: 运行被中止，结果不完整")
	}
	fmt.Printf("  输出: %s\n", path)
	fmt.Println("========================================")
}
