package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
)

// imageExts расширения файлов, которые берутся в пакетную обработку
var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// BatchReport итог пакетной обработки каталога
type BatchReport struct {
	Processed   int      // сканов обработано успешно
	Failed      int      // сканов пропущено из-за ошибок
	Regions     int      // всего сохранено областей
	FailedFiles []string // пути пропущенных сканов
}

type BatchService struct {
	client  port.RemoteSplitter
	store   port.OutputStore
	policy  entity.Policy
	workers int
	logger  *slog.Logger
}

// NewBatchService создаёт сервис пакетной обработки. workers <= 0 означает число CPU.
func NewBatchService(client port.RemoteSplitter, store port.OutputStore, policy entity.Policy, workers int, logger *slog.Logger) *BatchService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchService{
		client:  client,
		store:   store,
		policy:  policy,
		workers: workers,
		logger:  logger,
	}
}

// Run очищает каталоги результатов и отправляет каждый скан из dir на разбиение.
// Ошибка одного файла не останавливает обработку остальных.
func (s *BatchService) Run(ctx context.Context, dir string) (*BatchReport, error) {
	files, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if err := s.store.Reset(); err != nil {
		return nil, fmt.Errorf("reset output: %w", err)
	}
	s.logger.Info("batch started", "dir", dir, "files", len(files), "workers", s.workers)

	report := &BatchReport{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

loop:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			saved, err := s.processFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("failed to process scan", "path", path, "error", err)
				report.Failed++
				report.FailedFiles = append(report.FailedFiles, path)
				return
			}
			report.Processed++
			report.Regions += saved
		}(path)
	}
	wg.Wait()

	sort.Strings(report.FailedFiles)
	s.logger.Info("batch finished",
		"processed", report.Processed,
		"failed", report.Failed,
		"regions", report.Regions,
	)
	return report, ctx.Err()
}

func (s *BatchService) processFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read scan: %w", err)
	}

	result, err := s.client.Split(ctx, path, data, s.policy)
	if err != nil {
		return 0, err
	}

	saved, err := s.store.SaveRegions(path, result.Regions)
	if err != nil {
		return 0, fmt.Errorf("save regions: %w", err)
	}
	if _, err := s.store.SaveSnapshots(path, result); err != nil {
		return 0, fmt.Errorf("save snapshots: %w", err)
	}
	s.logger.Debug("scan processed", "path", path, "regions", len(saved))
	return len(saved), nil
}

// ListImages возвращает отсортированные пути изображений в dir без обхода подкаталогов.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scan dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
