package segment

import (
	"fmt"
	"image"

	"scan-splitter/internal/domain/entity"
)

// Candidate контур, прошедший упрощение, с производными характеристиками
type Candidate struct {
	Boundary Boundary        // упрощённый контур
	Box      image.Rectangle // ограничивающий прямоугольник
	Area     float64         // площадь упрощённого многоугольника
}

// RegionPolicy стратегия решения «похож ли контур на отдельную фотографию».
type RegionPolicy interface {
	// Name имя политики
	Name() entity.Policy
	// Padding отступ вокруг принятой области
	Padding() int
	// Accept решает, принять ли кандидата на изображении с границами bounds
	Accept(c Candidate, bounds image.Rectangle) bool
}

// AreaSizePolicy отбор основного API: отсекает шум по площади и размерам
// и слишком крупные контуры (обычно рамку всего скана).
type AreaSizePolicy struct {
	MinArea         float64
	MinSide         int
	MaxSideFraction float64
	Pad             int
}

// NewAreaSizePolicy создаёт политику с порогами по умолчанию и заданным отступом.
func NewAreaSizePolicy(padding int) AreaSizePolicy {
	return AreaSizePolicy{
		MinArea:         5000,
		MinSide:         100,
		MaxSideFraction: 0.9,
		Pad:             padding,
	}
}

func (p AreaSizePolicy) Name() entity.Policy { return entity.PolicyAreaSize }

func (p AreaSizePolicy) Padding() int { return p.Pad }

func (p AreaSizePolicy) Accept(c Candidate, bounds image.Rectangle) bool {
	w, h := c.Box.Dx(), c.Box.Dy()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if c.Area < p.MinArea || w < p.MinSide || h < p.MinSide {
		return false
	}
	if float64(w) > p.MaxSideFraction*iw || float64(h) > p.MaxSideFraction*ih {
		return false
	}
	return true
}

// AspectRatioPolicy отбор ручного просмотра: пропорции, относительная площадь
// и минимальная доля каждой стороны. Отступ не применяется.
type AspectRatioPolicy struct {
	MinAspect       float64
	MaxAspect       float64
	MinAreaFraction float64
	MaxAreaFraction float64
	MinSideFraction float64
}

// NewAspectRatioPolicy создаёт политику с порогами по умолчанию.
func NewAspectRatioPolicy() AspectRatioPolicy {
	return AspectRatioPolicy{
		MinAspect:       0.5,
		MaxAspect:       2.0,
		MinAreaFraction: 0.02,
		MaxAreaFraction: 0.9,
		MinSideFraction: 0.2,
	}
}

func (p AspectRatioPolicy) Name() entity.Policy { return entity.PolicyAspectRatio }

func (p AspectRatioPolicy) Padding() int { return 0 }

func (p AspectRatioPolicy) Accept(c Candidate, bounds image.Rectangle) bool {
	w, h := float64(c.Box.Dx()), float64(c.Box.Dy())
	if h == 0 {
		return false
	}
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	aspect := w / h
	if aspect <= p.MinAspect || aspect >= p.MaxAspect {
		return false
	}
	area := w * h
	if area <= p.MinAreaFraction*iw*ih || area >= p.MaxAreaFraction*iw*ih {
		return false
	}
	return w > p.MinSideFraction*iw && h > p.MinSideFraction*ih
}

// PolicyFor возвращает политику по имени. Отступ area-size берётся из cfg.
func PolicyFor(name entity.Policy, cfg Config) (RegionPolicy, error) {
	switch name {
	case entity.PolicyAreaSize, "":
		return NewAreaSizePolicy(cfg.Padding), nil
	case entity.PolicyAspectRatio:
		return NewAspectRatioPolicy(), nil
	default:
		return nil, &entity.ConfigError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q", name)}
	}
}

var (
	_ RegionPolicy = AreaSizePolicy{}
	_ RegionPolicy = AspectRatioPolicy{}
)
