package segment

import "image"

// Dilate расширяет передний план квадратным элементом ksize×ksize iterations раз.
func Dilate(mask *image.Gray, ksize, iterations int) *image.Gray {
	out := cloneGray(mask)
	for i := 0; i < iterations; i++ {
		out = morph(out, ksize, true)
	}
	return out
}

// Erode сужает передний план квадратным элементом ksize×ksize iterations раз.
func Erode(mask *image.Gray, ksize, iterations int) *image.Gray {
	out := cloneGray(mask)
	for i := 0; i < iterations; i++ {
		out = morph(out, ksize, false)
	}
	return out
}

// Close выполняет замыкание: iterations расширений, затем iterations сужений.
// Заполняет мелкие дыры, не увеличивая внешнюю границу пятна.
func Close(mask *image.Gray, ksize, iterations int) *image.Gray {
	return Erode(Dilate(mask, ksize, iterations), ksize, iterations)
}

// morph применяет max (dilate) или min (erode) фильтр по строкам, затем по столбцам.
// Пиксели за границей изображения в окно не попадают.
func morph(src *image.Gray, ksize int, dilate bool) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	lo, hi := ksize/2, ksize-1-ksize/2

	tmp := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride:]
		out := tmp.Pix[y*tmp.Stride:]
		for x := 0; x < w; x++ {
			v := in[x]
			for xx := max(0, x-lo); xx <= min(w-1, x+hi); xx++ {
				v = pick(v, in[xx], dilate)
			}
			out[x] = v
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			v := tmp.Pix[y*tmp.Stride+x]
			for yy := max(0, y-lo); yy <= min(h-1, y+hi); yy++ {
				v = pick(v, tmp.Pix[yy*tmp.Stride+x], dilate)
			}
			out[x] = v
		}
	}
	return dst
}

func pick(a, b uint8, larger bool) uint8 {
	if larger == (b > a) {
		return b
	}
	return a
}
