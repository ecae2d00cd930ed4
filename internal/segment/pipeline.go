package segment

import (
	"errors"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"scan-splitter/internal/domain/entity"
)

// Pipeline конвейер разбиения скана. Безопасен для параллельного использования:
// не хранит изменяемого состояния между вызовами.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New проверяет конфигурацию и создаёт конвейер. logger может быть nil.
func New(cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// Config возвращает конфигурацию конвейера
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Segment прогоняет изображение через все этапы и возвращает вырезанные области
// вместе со снимками каждого этапа. Отсутствие областей не является ошибкой.
func (p *Pipeline) Segment(img image.Image, policy RegionPolicy) (*entity.ProcessingResult, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &entity.DecodeError{Cause: errors.New("empty image")}
	}
	if policy == nil {
		return nil, &entity.ConfigError{Field: "policy", Reason: "not set"}
	}

	src := imaging.Clone(img)
	bounds := src.Bounds()
	snapshots := make(map[string]image.Image, 5)

	gray := Grayscale(src)
	snapshots[entity.SnapshotGray] = gray
	p.logger.Debug("converted to grayscale", "width", bounds.Dx(), "height", bounds.Dy())

	blurred := GaussianBlur(gray, p.cfg.BlurKernel)
	snapshots[entity.SnapshotBlurred] = blurred
	p.logger.Debug("gaussian blur applied", "kernel", p.cfg.BlurKernel)

	mask := p.Binarize(blurred)
	snapshots[entity.SnapshotThresholded] = mask
	p.logger.Debug("threshold applied", "mode", p.cfg.ThresholdMode)

	dilated := Dilate(mask, p.cfg.MorphKernel, p.cfg.DilateIterations)
	snapshots[entity.SnapshotDilated] = dilated
	p.logger.Debug("mask dilated", "kernel", p.cfg.MorphKernel, "iterations", p.cfg.DilateIterations)

	closed := Close(dilated, p.cfg.MorphKernel, p.cfg.CloseIterations)
	snapshots[entity.SnapshotClosed] = closed
	p.logger.Debug("morphological closing done", "iterations", p.cfg.CloseIterations)

	return &entity.ProcessingResult{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Policy:    policy.Name(),
		Regions:   p.Regions(closed, src, policy),
		Snapshots: snapshots,
	}, nil
}

// Binarize строит маску выбранным способом порога
func (p *Pipeline) Binarize(gray *image.Gray) *image.Gray {
	if p.cfg.ThresholdMode == ThresholdGlobal {
		return GlobalThreshold(gray, p.cfg.GlobalLevel)
	}
	return AdaptiveThreshold(gray, p.cfg.BlockSize, p.cfg.Offset)
}

// Regions выполняет этапы выделения, отбора и вырезания по готовой маске.
// Маска и src должны иметь одинаковые размеры.
func (p *Pipeline) Regions(mask *image.Gray, src image.Image, policy RegionPolicy) []entity.Region {
	boundaries := TraceExternal(mask)
	p.logger.Debug("found contours", "count", len(boundaries))

	candidates := make([]Candidate, 0, len(boundaries))
	for _, b := range boundaries {
		approx := ApproxPolygon(b, p.cfg.Epsilon*ArcLength(b, true))
		candidates = append(candidates, Candidate{
			Boundary: approx,
			Box:      BoundingBox(approx),
			Area:     Area(approx),
		})
	}
	return p.Select(candidates, src, policy)
}

// Select отбирает кандидатов политикой, добавляет отступ и вырезает области
// из src. Используется и другими движками, которые строят кандидатов сами.
func (p *Pipeline) Select(candidates []Candidate, src image.Image, policy RegionPolicy) []entity.Region {
	bounds := src.Bounds().Sub(src.Bounds().Min)

	boxes := make([]image.Rectangle, 0, len(candidates))
	outlines := make(map[image.Rectangle]Boundary, len(candidates))
	for _, c := range candidates {
		attrs := []any{
			"x", c.Box.Min.X, "y", c.Box.Min.Y,
			"w", c.Box.Dx(), "h", c.Box.Dy(),
			"area", c.Area, "policy", policy.Name(),
		}
		if !policy.Accept(c, bounds) {
			p.logger.Debug("contour filtered out", attrs...)
			continue
		}
		p.logger.Debug("contour accepted", attrs...)
		box := PadAndClamp(c.Box, policy.Padding(), bounds)
		if _, seen := outlines[box]; !seen {
			outlines[box] = c.Boundary
		}
		boxes = append(boxes, box)
	}

	if p.cfg.MergeOverlaps {
		before := len(boxes)
		boxes = MergeOverlapping(boxes, p.cfg.OverlapIoU)
		p.logger.Debug("overlapping regions merged", "before", before, "after", len(boxes))
	}

	regions := make([]entity.Region, 0, len(boxes))
	for _, box := range boxes {
		// у прямоугольника, полученного объединением, своего контура нет
		var outline []image.Point
		if b, ok := outlines[box]; ok {
			outline = append(outline, b...)
		}
		regions = append(regions, entity.Region{
			Box:      entity.BoxFromRect(box),
			Boundary: outline,
			Image:    Crop(src, box),
		})
	}
	p.logger.Debug("regions extracted", "count", len(regions))
	return regions
}
