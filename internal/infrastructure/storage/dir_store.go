package storage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/infrastructure/codec"
)

// DirStore сохраняет результаты разбиения в каталоги на диске.
//
// Области пишутся в OutputDir как processed_<имя>_<n>.jpg, снимки этапов
// в DebugDir как <имя>_<этап>.jpg.
type DirStore struct {
	OutputDir string
	DebugDir  string
	Quality   int
}

// NewDirStore создаёт хранилище. quality вне [1,100] заменяется значением по умолчанию.
func NewDirStore(outputDir, debugDir string, quality int) *DirStore {
	if quality < 1 || quality > 100 {
		quality = codec.DefaultJPEGQuality
	}
	return &DirStore{OutputDir: outputDir, DebugDir: debugDir, Quality: quality}
}

// Reset создаёт каталоги и удаляет из них результаты прошлого запуска.
func (s *DirStore) Reset() error {
	for _, dir := range []string{s.OutputDir, s.DebugDir} {
		if err := clearDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// SaveRegions сохраняет области скана source, нумерация с нуля.
func (s *DirStore) SaveRegions(source string, regions []entity.Region) ([]string, error) {
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	name := filepath.Base(source)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}

	paths := make([]string, 0, len(regions))
	for idx, r := range regions {
		path := filepath.Join(s.OutputDir, fmt.Sprintf("processed_%s_%d.jpg", name, idx))
		if err := s.writeJPEG(path, r.Image); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveSnapshots сохраняет снимки этапов в порядке выполнения.
func (s *DirStore) SaveSnapshots(source string, result *entity.ProcessingResult) ([]string, error) {
	if err := os.MkdirAll(s.DebugDir, 0o755); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	name := stem(source)
	paths := make([]string, 0, len(result.Snapshots))
	for _, step := range entity.SnapshotNames() {
		snap, ok := result.Snapshots[step]
		if !ok {
			continue
		}
		path := filepath.Join(s.DebugDir, fmt.Sprintf("%s_%s.jpg", name, step))
		if err := s.writeJPEG(path, snap); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveCrops сохраняет фрагменты как <имя>_crop_<n><расширение>, нумерация сквозная с единицы.
// Если формат исходника не поддерживается для записи, используется JPEG.
func (s *DirStore) SaveCrops(dir string, regions []entity.Region) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create crop dir: %w", err)
	}

	paths := make([]string, 0, len(regions))
	for i, r := range regions {
		ext := filepath.Ext(r.Source)
		format, err := imaging.FormatFromExtension(ext)
		if err != nil {
			format, ext = imaging.JPEG, ".jpg"
		}

		data, err := codec.Encode(r.Image, format, s.Quality)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_crop_%d%s", stem(r.Source), i+1, ext))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *DirStore) writeJPEG(path string, img image.Image) error {
	data, err := codec.EncodeJPEG(img, s.Quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// clearDir создаёт каталог или удаляет всё его содержимое
func clearDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var (
	_ port.OutputStore = (*DirStore)(nil)
	_ port.CropStore   = (*DirStore)(nil)
)
