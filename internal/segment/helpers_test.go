package segment

import (
	"image"
	"image/color"
	"image/draw"
)

func newMask(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

func fillMask(m *image.Gray, r image.Rectangle, v uint8) {
	draw.Draw(m, r, &image.Uniform{C: color.Gray{Y: v}}, image.Point{}, draw.Src)
}

func newCanvas(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// drawOutline рисует рамку толщиной t внутри r
func drawOutline(img draw.Image, r image.Rectangle, t int, c color.Color) {
	u := &image.Uniform{C: c}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

func countForeground(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func mustPipeline(cfg Config) *Pipeline {
	p, err := New(cfg, nil)
	if err != nil {
		panic(err)
	}
	return p
}
