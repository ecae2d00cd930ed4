// Package codec переводит изображения между байтами транспорта и image.Image.
// Конвейер разбиения работает только с декодированными пикселями.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"scan-splitter/internal/domain/entity"
)

// DefaultJPEGQuality качество JPEG для ответов и файлов результатов
const DefaultJPEGQuality = 90

// Decode декодирует JPEG, PNG, GIF, BMP, TIFF или WebP с учётом EXIF-ориентации.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, entity.ErrNoImage
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &entity.DecodeError{Cause: err}
	}
	if img.Bounds().Empty() {
		return nil, &entity.DecodeError{Cause: fmt.Errorf("zero-sized image")}
	}
	return img, nil
}

// EncodeJPEG кодирует изображение в JPEG. quality вне [1,100] заменяется на DefaultJPEGQuality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	return Encode(img, imaging.JPEG, quality)
}

// EncodeBase64 кодирует изображение в JPEG и затем в base64
func EncodeBase64(img image.Image, quality int) (string, error) {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBase64 разбирает base64, допускается префикс data URL ("data:image/png;base64,").
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		s = s[idx+1:]
	}
	if s == "" {
		return nil, entity.ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}

// Encode кодирует изображение в указанном формате. quality учитывается только для JPEG.
func Encode(img image.Image, format imaging.Format, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
