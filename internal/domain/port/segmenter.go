package port

import (
	"context"

	"scan-splitter/internal/domain/entity"
)

// SegmentOptions параметры одного запуска конвейера
type SegmentOptions struct {
	Policy  entity.Policy // стратегия отбора областей
	Padding *int          // переопределение отступа (nil: из конфигурации)
}

// Segmenter интерфейс конвейера разбиения скана
type Segmenter interface {
	// Segment декодирует изображение и возвращает найденные области со снимками этапов
	Segment(ctx context.Context, imageData []byte, opts SegmentOptions) (*entity.ProcessingResult, error)
}
