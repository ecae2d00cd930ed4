package vision

import (
	"context"
	"log/slog"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/infrastructure/codec"
	"scan-splitter/internal/segment"
)

// NativeSegmenter движок разбиения на чистом Go, без OpenCV
type NativeSegmenter struct {
	cfg    segment.Config
	logger *slog.Logger
}

// NewNativeSegmenter создаёт движок с базовой конфигурацией конвейера.
func NewNativeSegmenter(cfg segment.Config, logger *slog.Logger) (*NativeSegmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NativeSegmenter{cfg: cfg, logger: logger}, nil
}

// Segment декодирует изображение и прогоняет его через конвейер.
func (s *NativeSegmenter) Segment(ctx context.Context, imageData []byte, opts port.SegmentOptions) (*entity.ProcessingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, policy, err := resolve(s.cfg, opts)
	if err != nil {
		return nil, err
	}

	img, err := codec.Decode(imageData)
	if err != nil {
		return nil, err
	}

	pipeline, err := segment.New(cfg, s.logger.With("engine", "native"))
	if err != nil {
		return nil, err
	}
	return pipeline.Segment(img, policy)
}

// resolve применяет параметры запроса к базовой конфигурации и выбирает политику.
func resolve(base segment.Config, opts port.SegmentOptions) (segment.Config, segment.RegionPolicy, error) {
	cfg := base
	if opts.Padding != nil {
		cfg.Padding = *opts.Padding
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	name, err := entity.ParsePolicy(string(opts.Policy))
	if err != nil {
		return cfg, nil, err
	}
	policy, err := segment.PolicyFor(name, cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, policy, nil
}

var _ port.Segmenter = (*NativeSegmenter)(nil)
