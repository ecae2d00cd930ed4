package segment

import (
	"image"

	"github.com/disintegration/imaging"
)

// PadAndClamp расширяет прямоугольник на padding с каждой стороны и обрезает
// результат по границам изображения. Левый верхний угол не уходит за ноль,
// а ширина и высота ограничены оставшейся частью изображения.
func PadAndClamp(box image.Rectangle, padding int, bounds image.Rectangle) image.Rectangle {
	iw, ih := bounds.Dx(), bounds.Dy()
	x := max(0, box.Min.X-padding)
	y := max(0, box.Min.Y-padding)
	w := min(iw-x, box.Dx()+2*padding)
	h := min(ih-y, box.Dy()+2*padding)
	return image.Rect(x, y, x+w, y+h)
}

// Crop вырезает прямоугольник r из исходного изображения в новый буфер.
func Crop(src image.Image, r image.Rectangle) *image.NRGBA {
	return imaging.Crop(src, r.Add(src.Bounds().Min))
}
