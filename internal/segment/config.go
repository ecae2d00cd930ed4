// Package segment находит прямоугольные фотографии на общем скане и вырезает их.
//
// Конвейер состоит из пяти этапов: бинаризация, морфологическая очистка маски,
// трассировка внешних контуров, отбор контуров по политике и вырезание областей
// с отступом из исходного цветного изображения. Все этапы чистые: каждый создаёт
// новый буфер и не хранит состояния между вызовами.
package segment

import (
	"fmt"

	"scan-splitter/internal/domain/entity"
)

// ThresholdMode способ бинаризации
type ThresholdMode string

const (
	// ThresholdAdaptive локальный порог: среднее окна минус смещение
	ThresholdAdaptive ThresholdMode = "adaptive"
	// ThresholdGlobal единый порог для всего изображения
	ThresholdGlobal ThresholdMode = "global"
)

// Config параметры конвейера
type Config struct {
	BlurKernel       int           // размер ядра гауссова размытия (нечётный)
	ThresholdMode    ThresholdMode // адаптивный или глобальный порог
	BlockSize        int           // размер окна адаптивного порога (нечётный, >= 3)
	Offset           int           // вычитается из локального среднего
	GlobalLevel      int           // порог для ThresholdGlobal
	MorphKernel      int           // сторона квадратного структурного элемента
	DilateIterations int           // итерации расширения
	CloseIterations  int           // итерации замыкания
	Epsilon          float64       // допуск упрощения контура как доля периметра
	Padding          int           // отступ вокруг области (только area-size)
	MergeOverlaps    bool          // объединять пересекающиеся области
	OverlapIoU       float64       // порог IoU для объединения
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		BlurKernel:       5,
		ThresholdMode:    ThresholdAdaptive,
		BlockSize:        11,
		Offset:           2,
		GlobalLevel:      127,
		MorphKernel:      5,
		DilateIterations: 2,
		CloseIterations:  2,
		Epsilon:          0.02,
		Padding:          10,
		MergeOverlaps:    false,
		OverlapIoU:       0.45,
	}
}

// ReviewConfig параметры ручного просмотра: глобальный порог без размытия
// и морфологии, поэтому близко лежащие фотографии не сливаются в одно пятно.
func ReviewConfig() Config {
	cfg := DefaultConfig()
	cfg.ThresholdMode = ThresholdGlobal
	cfg.BlurKernel = 1
	cfg.DilateIterations = 0
	cfg.CloseIterations = 0
	return cfg
}

// Validate проверяет параметры и возвращает *entity.ConfigError
func (c Config) Validate() error {
	switch {
	case c.BlurKernel < 1 || c.BlurKernel%2 == 0:
		return configErr("blur_kernel", "must be a positive odd number, got %d", c.BlurKernel)
	case c.ThresholdMode != ThresholdAdaptive && c.ThresholdMode != ThresholdGlobal:
		return configErr("threshold_mode", "unknown mode %q", c.ThresholdMode)
	case c.BlockSize < 3 || c.BlockSize%2 == 0:
		return configErr("block_size", "must be an odd number >= 3, got %d", c.BlockSize)
	case c.GlobalLevel < 0 || c.GlobalLevel > 255:
		return configErr("global_level", "must be within [0,255], got %d", c.GlobalLevel)
	case c.MorphKernel < 1:
		return configErr("morph_kernel", "must be positive, got %d", c.MorphKernel)
	case c.DilateIterations < 0:
		return configErr("dilate_iterations", "must not be negative, got %d", c.DilateIterations)
	case c.CloseIterations < 0:
		return configErr("close_iterations", "must not be negative, got %d", c.CloseIterations)
	case c.Epsilon < 0 || c.Epsilon >= 1:
		return configErr("epsilon", "must be within [0,1), got %g", c.Epsilon)
	case c.Padding < 0:
		return configErr("padding", "must not be negative, got %d", c.Padding)
	case c.OverlapIoU <= 0 || c.OverlapIoU > 1:
		return configErr("overlap_iou", "must be within (0,1], got %g", c.OverlapIoU)
	}
	return nil
}

func configErr(field, format string, args ...any) error {
	return &entity.ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
