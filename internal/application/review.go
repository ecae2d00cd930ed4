package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
)

// ReviewService разбивает выбранные файлы в процессе, без HTTP, для ручного просмотра.
type ReviewService struct {
	segmenter port.Segmenter
	store     port.CropStore
	policy    entity.Policy
	logger    *slog.Logger
}

// NewReviewService создаёт сервис просмотра. Пустая policy означает PolicyAspectRatio.
func NewReviewService(segmenter port.Segmenter, store port.CropStore, policy entity.Policy, logger *slog.Logger) *ReviewService {
	if policy == "" {
		policy = entity.PolicyAspectRatio
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReviewService{segmenter: segmenter, store: store, policy: policy, logger: logger}
}

// Review возвращает фрагменты всех файлов в порядке paths. Ошибки отдельных
// файлов собираются в общую ошибку, остальные файлы обрабатываются.
func (s *ReviewService) Review(ctx context.Context, paths []string) ([]entity.Region, error) {
	if s.segmenter == nil {
		return nil, ErrNoSegmenter
	}

	var (
		regions []entity.Region
		errs    []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return regions, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		result, err := s.segmenter.Segment(ctx, data, port.SegmentOptions{Policy: s.policy})
		if err != nil {
			s.logger.Warn("review skipped file", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		for _, r := range result.Regions {
			r.Source = path
			regions = append(regions, r)
		}
		s.logger.Info("file reviewed", "path", path, "crops", len(result.Regions))
	}
	return regions, errors.Join(errs...)
}

// Save записывает фрагменты в dir
func (s *ReviewService) Save(dir string, regions []entity.Region) ([]string, error) {
	if s.store == nil {
		return nil, errors.New("crop store is not configured")
	}
	return s.store.SaveCrops(dir, regions)
}
