package main

import (
	"fmt"
	stdlog "log"
	"runtime"
	"strings"
	"time"

	"twc-crawler/internal/config"
	"twc-crawler/internal/log"
	"twc-crawler/internal/orchestrator"
	"twc-crawler/internal/utils"
)

func main() {
	fmt.Println("🚀 Terry White Chemmart Product Crawler - SQLite Version")
	fmt.Println(strings.Repeat("=", 60))

	// Load configuration from defaults, .env and environment
	cfg := config.Load()

	log.Configure(log.Config{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFile,
	})
	baseLogger := log.Base()
	baseLogger.Info().Str("base_url", cfg.BaseURL).Int("max_products", cfg.MaxProducts).Msg("crawler starting")

	// Create auto crawler with SQLite support
	autoCrawler, err := orchestrator.New(cfg)
	if err != nil {
		stdlog.Fatalf("❌ Error initializing crawler: %v", err)
	}

	// Start crawling
	startTime := time.Now()
	err = autoCrawler.Run()
	duration := time.Since(startTime)

	if err != nil {
		utils.PrintErr(fmt.Sprintf("❌ Error during crawl: %v", err))
	}
	baseLogger.Info().Str("duration", duration.String()).Msg("crawler finished")

	fmt.Printf("🎉 Finished in %s\n", utils.FormatDuration(duration))
	fmt.Printf("📊 Results saved in file: %s\n", cfg.OutputFile)
	fmt.Printf("💾 Database: %s\n", cfg.DatabasePath)

	// Memory stats to keep an eye on allocation behaviour
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("💾 Memory: Alloc=%d KB, TotalAlloc=%d KB, Sys=%d KB, NumGC=%d\n",
		m.Alloc/1024, m.TotalAlloc/1024, m.Sys/1024, m.NumGC)

	fmt.Println(strings.Repeat("=", 60))
}
