package segment

import "image"

// Boundary замкнутый контур пятна переднего плана: упорядоченные точки многоугольника.
type Boundary []image.Point

// Направления обхода по часовой стрелке (ось Y вниз), начиная с востока.
var directions = [8]image.Point{
	{X: 1, Y: 0},   // восток
	{X: 1, Y: 1},   // юго-восток
	{X: 0, Y: 1},   // юг
	{X: -1, Y: 1},  // юго-запад
	{X: -1, Y: 0},  // запад
	{X: -1, Y: -1}, // северо-запад
	{X: 0, Y: -1},  // север
	{X: 1, Y: -1},  // северо-восток
}

// TraceExternal возвращает внешние контуры всех 8-связных пятен маски,
// не вложенных в дыры других пятен. Контуры идут в порядке построчного
// обхода маски по их верхней левой точке; промежуточные точки прямых
// участков отбрасываются.
func TraceExternal(mask *image.Gray) []Boundary {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}
	fg := func(x, y int) bool {
		return mask.Pix[y*mask.Stride+x] != 0
	}

	outer := floodOuterBackground(mask, w, h)
	labels := make([]int32, w*h)
	var label int32
	var boundaries []Boundary

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg(x, y) || labels[y*w+x] != 0 {
				continue
			}
			label++
			if !labelComponent(mask, labels, outer, w, h, x, y, label) {
				continue
			}
			boundaries = append(boundaries, compressChain(traceBorder(labels, w, h, image.Pt(x, y), label)))
		}
	}
	return boundaries
}

// floodOuterBackground отмечает фон, 4-связный с краем изображения.
func floodOuterBackground(mask *image.Gray, w, h int) []bool {
	outer := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	push := func(x, y int) {
		i := y*w + x
		if outer[i] || mask.Pix[y*mask.Stride+x] != 0 {
			return
		}
		outer[i] = true
		queue = append(queue, i)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		for _, d := range directions {
			if d.X != 0 && d.Y != 0 {
				continue
			}
			nx, ny := x+d.X, y+d.Y
			if nx >= 0 && ny >= 0 && nx < w && ny < h {
				push(nx, ny)
			}
		}
	}
	return outer
}

// labelComponent помечает 8-связную компоненту и сообщает, касается ли она
// внешнего фона или края изображения, то есть является ли внешней.
func labelComponent(mask *image.Gray, labels []int32, outer []bool, w, h, sx, sy int, label int32) bool {
	external := false
	stack := []int{sy*w + sx}
	labels[sy*w+sx] = label

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		if x == 0 || y == 0 || x == w-1 || y == h-1 {
			external = true
		}
		for _, d := range directions {
			nx, ny := x+d.X, y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if mask.Pix[ny*mask.Stride+nx] == 0 {
				if outer[j] && (d.X == 0 || d.Y == 0) {
					external = true
				}
				continue
			}
			if labels[j] == 0 {
				labels[j] = label
				stack = append(stack, j)
			}
		}
	}
	return external
}

// traceBorder обходит границу компоненты методом окрестности Мура.
// start: верхняя левая точка компоненты, её западный сосед всегда фон.
// Обход завершается, когда из start повторяется первый шаг.
func traceBorder(labels []int32, w, h int, start image.Point, label int32) []image.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == label
	}

	points := []image.Point{start}
	cur, back := start, 4
	firstDir := -1
	limit := 4*w*h + 8

	for step := 0; step < limit; step++ {
		d := -1
		for i := 1; i <= 8; i++ {
			c := (back + i) % 8
			if inside(cur.Add(directions[c])) {
				d = c
				break
			}
		}
		if d < 0 {
			// одиночный пиксель
			return points
		}
		if cur == start {
			if firstDir < 0 {
				firstDir = d
			} else if d == firstDir {
				break
			}
		}

		cur = cur.Add(directions[d])
		points = append(points, cur)
		// последний проверенный фоновый сосед относительно новой точки
		if d%2 == 0 {
			back = (d + 6) % 8
		} else {
			back = (d + 5) % 8
		}
	}

	if len(points) > 1 && points[len(points)-1] == start {
		points = points[:len(points)-1]
	}
	return points
}

// compressChain оставляет только точки, в которых меняется направление обхода.
func compressChain(points []image.Point) Boundary {
	n := len(points)
	if n < 3 {
		return append(Boundary(nil), points...)
	}
	out := make(Boundary, 0, n/4+4)
	for i := 0; i < n; i++ {
		prev := points[(i-1+n)%n]
		next := points[(i+1)%n]
		if points[i].Sub(prev) != next.Sub(points[i]) {
			out = append(out, points[i])
		}
	}
	if len(out) == 0 {
		out = append(out, points[0])
	}
	return out
}
