// Command review разбивает указанные сканы локально, без HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	app "scan-splitter/internal/application"
	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/storage"
	"scan-splitter/internal/infrastructure/vision"
	"scan-splitter/internal/segment"
)

func main() {
	var (
		outputDir = flag.String("out", "crops", "directory for cropped photos")
		policy    = flag.String("policy", string(entity.PolicyAspectRatio), "region policy: area-size (a) or aspect-ratio (b)")
		full      = flag.Bool("full", false, "use the API pipeline (blur, adaptive threshold, morphology)")
		quality   = flag.Int("quality", 90, "JPEG quality of saved files")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] scan...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	regionPolicy, err := entity.ParsePolicy(*policy)
	if err != nil {
		log.Fatalf("Invalid policy: %v", err)
	}

	cfg := segment.ReviewConfig()
	if *full {
		cfg = segment.DefaultConfig()
	}

	segmenter, err := vision.NewNativeSegmenter(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create segmenter: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	review := app.NewReviewService(segmenter, storage.NewDirStore(*outputDir, "", *quality), regionPolicy, logger)
	regions, reviewErr := review.Review(ctx, flag.Args())
	if reviewErr != nil {
		logger.Warn("some files were skipped", "error", reviewErr)
	}

	paths, err := review.Save(*outputDir, regions)
	if err != nil {
		log.Fatalf("Failed to save crops: %v", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	if reviewErr != nil {
		os.Exit(1)
	}
}
