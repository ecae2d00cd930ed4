package entity

import "image"

// Имена отладочных снимков этапов конвейера в порядке выполнения.
const (
	SnapshotGray        = "gray"
	SnapshotBlurred     = "blurred"
	SnapshotThresholded = "thresholded"
	SnapshotDilated     = "dilated"
	SnapshotClosed      = "closed"
)

// SnapshotNames возвращает имена снимков в порядке этапов.
func SnapshotNames() []string {
	return []string{SnapshotGray, SnapshotBlurred, SnapshotThresholded, SnapshotDilated, SnapshotClosed}
}

// ProcessingResult хранит итог разбиения скана.
type ProcessingResult struct {
	Width     int                    // ширина исходного изображения
	Height    int                    // высота исходного изображения
	Policy    Policy                 // политика отбора, которой получены области
	Regions   []Region               // принятые области в порядке обхода маски
	Snapshots map[string]image.Image // снимки этапов по имени
}

// HasRegions сообщает, найдена ли хотя бы одна область
func (r *ProcessingResult) HasRegions() bool {
	return len(r.Regions) > 0
}
