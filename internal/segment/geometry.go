package segment

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func vec(p image.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// ArcLength возвращает длину ломаной; для closed учитывается замыкающий отрезок.
func ArcLength(b Boundary, closed bool) float64 {
	n := len(b)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 1; i < n; i++ {
		length += r2.Norm(r2.Sub(vec(b[i]), vec(b[i-1])))
	}
	if closed {
		length += r2.Norm(r2.Sub(vec(b[0]), vec(b[n-1])))
	}
	return length
}

// Area возвращает площадь многоугольника по формуле шнурования.
func Area(b Boundary) float64 {
	n := len(b)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += r2.Cross(vec(b[i]), vec(b[(i+1)%n]))
	}
	return math.Abs(sum) / 2
}

// BoundingBox возвращает минимальный прямоугольник, содержащий все пиксели контура.
// Ширина равна max-min+1, точки контура являются центрами пикселей.
func BoundingBox(b Boundary) image.Rectangle {
	if len(b) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: b[0], Max: b[0]}
	for _, p := range b[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// ApproxPolygon упрощает замкнутый контур алгоритмом Дугласа-Пекера с допуском epsilon.
// Контур делится на две цепочки: от первой точки до самой удалённой от неё и обратно.
func ApproxPolygon(b Boundary, epsilon float64) Boundary {
	n := len(b)
	if n <= 3 {
		return append(Boundary(nil), b...)
	}

	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := r2.Norm2(r2.Sub(vec(b[i]), vec(b[0]))); d > farDist {
			far, farDist = i, d
		}
	}

	head := simplifyChain(b[:far+1], epsilon)
	tail := simplifyChain(append(append(Boundary(nil), b[far:]...), b[0]), epsilon)

	out := make(Boundary, 0, len(head)+len(tail))
	out = append(out, head[:len(head)-1]...)
	out = append(out, tail[:len(tail)-1]...)
	return out
}

// simplifyChain упрощает открытую цепочку, сохраняя её концы.
func simplifyChain(chain Boundary, epsilon float64) Boundary {
	n := len(chain)
	if n <= 2 {
		return append(Boundary(nil), chain...)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true
	type span struct{ start, end int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.end-s.start < 2 {
			continue
		}

		maxDist, maxIdx := -1.0, s.start
		for i := s.start + 1; i < s.end; i++ {
			if d := segmentDistance(chain[i], chain[s.start], chain[s.end]); d > maxDist {
				maxDist, maxIdx = d, i
			}
		}
		if maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, span{s.start, maxIdx}, span{maxIdx, s.end})
		}
	}

	out := make(Boundary, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, chain[i])
		}
	}
	return out
}

// segmentDistance расстояние от p до прямой через a и b (до точки a, если a == b).
func segmentDistance(p, a, b image.Point) float64 {
	ab := r2.Sub(vec(b), vec(a))
	ap := r2.Sub(vec(p), vec(a))
	length := r2.Norm(ab)
	if length == 0 {
		return r2.Norm(ap)
	}
	return math.Abs(r2.Cross(ab, ap)) / length
}
