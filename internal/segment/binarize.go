package segment

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Grayscale переводит изображение в оттенки серого (яркость 0.299R+0.587G+0.114B).
func Grayscale(img image.Image) *image.Gray {
	return grayFromNRGBA(imaging.Grayscale(img))
}

// GaussianBlur размывает изображение ядром ksize×ksize.
// Для ksize <= 7 используются биномиальные веса, для больших ядер
// веса гауссианы с sigma = 0.3*((ksize-1)*0.5-1)+0.8.
func GaussianBlur(gray *image.Gray, ksize int) *image.Gray {
	opts := &imaging.ConvolveOptions{Normalize: true}
	switch ksize {
	case 1:
		return cloneGray(gray)
	case 3:
		w := kernelWeights(3)
		var k [9]float64
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				k[y*3+x] = w[y] * w[x]
			}
		}
		return grayFromNRGBA(imaging.Convolve3x3(gray, k, opts))
	case 5:
		w := kernelWeights(5)
		var k [25]float64
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				k[y*5+x] = w[y] * w[x]
			}
		}
		return grayFromNRGBA(imaging.Convolve5x5(gray, k, opts))
	default:
		return separableBlur(gray, kernelWeights(ksize))
	}
}

// AdaptiveThreshold строит маску с обратной полярностью: пиксель становится
// передним планом (255), если он не светлее среднего своего окна block×block
// минус offset. За границей изображения значения повторяются.
func AdaptiveThreshold(gray *image.Gray, block, offset int) *image.Gray {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	r := block / 2
	pw, ph := w+2*r, h+2*r
	stride := pw + 1
	integral := make([]int64, stride*(ph+1))
	for py := 0; py < ph; py++ {
		sy := clampInt(py-r, 0, h-1)
		row := gray.Pix[sy*gray.Stride:]
		var rowSum int64
		for px := 0; px < pw; px++ {
			rowSum += int64(row[clampInt(px-r, 0, w-1)])
			integral[(py+1)*stride+px+1] = integral[py*stride+px+1] + rowSum
		}
	}

	area := int64(block * block)
	for y := 0; y < h; y++ {
		src := gray.Pix[y*gray.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			sum := integral[(y+block)*stride+x+block] -
				integral[y*stride+x+block] -
				integral[(y+block)*stride+x] +
				integral[y*stride+x]
			mean := (sum + area/2) / area
			if int64(src[x]) <= mean-int64(offset) {
				out[x] = 255
			}
		}
	}
	return dst
}

// GlobalThreshold строит маску с обратной полярностью по единому порогу:
// передний план: пиксели не ярче level.
func GlobalThreshold(gray *image.Gray, level int) *image.Gray {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := gray.Pix[y*gray.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			if int(src[x]) <= level {
				out[x] = 255
			}
		}
	}
	return dst
}

func kernelWeights(ksize int) []float64 {
	w := make([]float64, ksize)
	if ksize <= 7 {
		// строка треугольника Паскаля
		w[0] = 1
		for i := 1; i < ksize; i++ {
			for j := i; j > 0; j-- {
				w[j] += w[j-1]
			}
		}
	} else {
		sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
		c := float64(ksize-1) / 2
		for i := range w {
			d := float64(i) - c
			w[i] = math.Exp(-d * d / (2 * sigma * sigma))
		}
	}

	var sum float64
	for _, v := range w {
		sum += v
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func separableBlur(gray *image.Gray, weights []float64) *image.Gray {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	r := len(weights) / 2
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			var acc float64
			for i, wt := range weights {
				acc += wt * float64(row[clampInt(x+i-r, 0, w-1)])
			}
			tmp[y*w+x] = acc
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			var acc float64
			for i, wt := range weights {
				acc += wt * tmp[clampInt(y+i-r, 0, h-1)*w+x]
			}
			out[x] = uint8(math.Min(255, math.Max(0, acc+0.5)))
		}
	}
	return dst
}

// grayFromNRGBA берёт красный канал серого NRGBA-изображения.
func grayFromNRGBA(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			out[x] = in[x*4]
		}
	}
	return dst
}

func cloneGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[y*src.Stride:])
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
