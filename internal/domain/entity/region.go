package entity

import "image"

// BoundingBox прямоугольник найденной области в координатах исходного скана
type BoundingBox struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
}

// BoxFromRect строит BoundingBox из image.Rectangle
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect возвращает область как image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Center возвращает координаты центра области
func (b BoundingBox) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area возвращает площадь прямоугольника
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Within проверяет, что область целиком лежит внутри изображения width×height
// и имеет положительные размеры.
func (b BoundingBox) Within(width, height int) bool {
	return b.X >= 0 && b.Y >= 0 &&
		b.Width > 0 && b.Height > 0 &&
		b.X+b.Width <= width && b.Y+b.Height <= height
}

// Region принятая область: прямоугольник с отступом, контур и вырезанное изображение
type Region struct {
	Box      BoundingBox   // прямоугольник после отступа и обрезки по границам
	Boundary []image.Point // упрощённый контур в координатах скана; nil у объединённых областей
	Source   string        // путь или имя исходного скана (пусто для одиночного запроса)
	Image    image.Image   // вырезанный фрагмент исходного цветного изображения
}
