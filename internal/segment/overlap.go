package segment

import "image"

// IoU отношение площади пересечения к площади объединения двух прямоугольников.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	ia := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - ia
	if union <= 0 {
		return 0
	}
	return ia / union
}

// MergeOverlapping объединяет прямоугольники с IoU не ниже threshold в их общий
// охватывающий прямоугольник. Порядок первых вхождений сохраняется.
// Конвейер вызывает его только при Config.MergeOverlaps.
func MergeOverlapping(boxes []image.Rectangle, threshold float64) []image.Rectangle {
	merged := append([]image.Rectangle(nil), boxes...)
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(merged) && !changed; i++ {
			for j := i + 1; j < len(merged); j++ {
				if IoU(merged[i], merged[j]) >= threshold {
					merged[i] = merged[i].Union(merged[j])
					merged = append(merged[:j], merged[j+1:]...)
					changed = true
					break
				}
			}
		}
	}
	return merged
}
