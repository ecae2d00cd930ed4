// Command batch отправляет каждый скан каталога на HTTP API и сохраняет
// вырезанные фотографии и промежуточные снимки конвейера.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	app "scan-splitter/internal/application"
	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/splitclient"
	"scan-splitter/internal/infrastructure/storage"
)

func main() {
	var (
		dir       = flag.String("dir", ".", "directory with scans")
		serverURL = flag.String("server", "http://localhost:8000", "split API base URL")
		outputDir = flag.String("out", "", "output directory (default <dir>/processed)")
		debugDir  = flag.String("debug", "debug_images", "directory for pipeline snapshots")
		workers   = flag.Int("workers", 0, "parallel uploads (default number of CPUs)")
		policy    = flag.String("policy", "", "region policy: area-size (a) or aspect-ratio (b)")
		timeout   = flag.Duration("timeout", 2*time.Minute, "per-request timeout")
		quality   = flag.Int("quality", 90, "JPEG quality of saved files")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	regionPolicy, err := entity.ParsePolicy(*policy)
	if err != nil {
		log.Fatalf("Invalid policy: %v", err)
	}
	if *outputDir == "" {
		*outputDir = filepath.Join(*dir, "processed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := splitclient.New(*serverURL, *timeout)
	if err := client.CheckHealth(ctx); err != nil {
		log.Fatalf("Split API is unavailable: %v", err)
	}

	store := storage.NewDirStore(*outputDir, *debugDir, *quality)
	batch := app.NewBatchService(client, store, regionPolicy, *workers, logger)

	report, err := batch.Run(ctx, *dir)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	if report.Failed > 0 {
		logger.Warn("some scans were skipped", "files", report.FailedFiles)
		os.Exit(1)
	}
}
