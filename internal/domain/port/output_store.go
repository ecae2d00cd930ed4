package port

import "scan-splitter/internal/domain/entity"

// OutputStore хранилище результатов пакетной обработки
type OutputStore interface {
	// Reset очищает каталоги результатов и отладочных снимков
	Reset() error

	// SaveRegions сохраняет вырезанные области скана source
	SaveRegions(source string, regions []entity.Region) ([]string, error)

	// SaveSnapshots сохраняет отладочные снимки этапов скана source
	SaveSnapshots(source string, result *entity.ProcessingResult) ([]string, error)
}

// CropStore хранилище фрагментов, отобранных при ручном просмотре
type CropStore interface {
	// SaveCrops сохраняет фрагменты с именами по исходному файлу и сквозному номеру
	SaveCrops(dir string, regions []entity.Region) ([]string, error)
}
