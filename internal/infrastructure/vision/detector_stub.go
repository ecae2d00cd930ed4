//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"log/slog"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/segment"
)

// ErrGoCVDisabled сборка выполнена без тега gocv
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

type GoCVSegmenter struct {
	cfg    segment.Config
	logger *slog.Logger
}

// NewGoCVSegmenter создаёт движок-заглушку (без OpenCV).
func NewGoCVSegmenter(cfg segment.Config, logger *slog.Logger) (*GoCVSegmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &GoCVSegmenter{cfg: cfg, logger: logger}, nil
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *GoCVSegmenter) Segment(ctx context.Context, imageData []byte, opts port.SegmentOptions) (*entity.ProcessingResult, error) {
	_ = ctx
	_ = imageData
	_ = opts
	return nil, ErrGoCVDisabled
}

var _ port.Segmenter = (*GoCVSegmenter)(nil)
