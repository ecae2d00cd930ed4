//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/segment"
)

// GoCVSegmenter движок разбиения на OpenCV. Отбор, отступ и вырезание
// выполняются теми же политиками, что и в NativeSegmenter.
type GoCVSegmenter struct {
	cfg    segment.Config
	logger *slog.Logger
}

// NewGoCVSegmenter создаёт движок на OpenCV.
func NewGoCVSegmenter(cfg segment.Config, logger *slog.Logger) (*GoCVSegmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GoCVSegmenter{cfg: cfg, logger: logger}, nil
}

// Segment запускает этапы конвейера на gocv.Mat.
func (s *GoCVSegmenter) Segment(ctx context.Context, imageData []byte, opts port.SegmentOptions) (*entity.ProcessingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, policy, err := resolve(s.cfg, opts)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With("engine", "gocv")

	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	src, err := mat.ToImage()
	if err != nil {
		return nil, &entity.DecodeError{Cause: err}
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(cfg.BlurKernel, cfg.BlurKernel), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	if cfg.ThresholdMode == segment.ThresholdGlobal {
		gocv.Threshold(blur, &thresh, float32(cfg.GlobalLevel), 255, gocv.ThresholdBinaryInv)
	} else {
		gocv.AdaptiveThreshold(blur, &thresh, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv,
			cfg.BlockSize, float32(cfg.Offset))
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(cfg.MorphKernel, cfg.MorphKernel))
	defer kernel.Close()

	dilated := repeat(thresh, cfg.DilateIterations, func(in gocv.Mat, out *gocv.Mat) { gocv.Dilate(in, out, kernel) })
	defer dilated.Close()

	// замыкание: сначала расширение, затем сужение с тем же числом итераций
	grown := repeat(dilated, cfg.CloseIterations, func(in gocv.Mat, out *gocv.Mat) { gocv.Dilate(in, out, kernel) })
	defer grown.Close()
	closed := repeat(grown, cfg.CloseIterations, func(in gocv.Mat, out *gocv.Mat) { gocv.Erode(in, out, kernel) })
	defer closed.Close()

	snapshots := make(map[string]image.Image, 5)
	for name, m := range map[string]gocv.Mat{
		entity.SnapshotGray:        gray,
		entity.SnapshotBlurred:     blur,
		entity.SnapshotThresholded: thresh,
		entity.SnapshotDilated:     dilated,
		entity.SnapshotClosed:      closed,
	} {
		img, err := m.ToImage()
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
		snapshots[name] = img
	}

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	logger.Debug("found contours", "count", contours.Size())

	candidates := make([]segment.Candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		approx := gocv.ApproxPolyDP(c, cfg.Epsilon*gocv.ArcLength(c, true), true)
		candidates = append(candidates, segment.Candidate{
			Boundary: approx.ToPoints(),
			Box:      gocv.BoundingRect(approx),
			Area:     gocv.ContourArea(approx),
		})
		approx.Close()
	}

	pipeline, err := segment.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &entity.ProcessingResult{
		Width:     mat.Cols(),
		Height:    mat.Rows(),
		Policy:    policy.Name(),
		Regions:   pipeline.Select(candidates, src, policy),
		Snapshots: snapshots,
	}, nil
}

// repeat применяет op n раз и возвращает новую матрицу. При n == 0 возвращает копию.
func repeat(src gocv.Mat, n int, op func(in gocv.Mat, out *gocv.Mat)) gocv.Mat {
	cur := src.Clone()
	for i := 0; i < n; i++ {
		next := gocv.NewMat()
		op(cur, &next)
		cur.Close()
		cur = next
	}
	return cur
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	if len(imageData) == 0 {
		return gocv.NewMat(), entity.ErrNoImage
	}
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	if err == nil {
		err = errors.New("unsupported image format")
	}
	return gocv.NewMat(), &entity.DecodeError{Cause: err}
}

var _ port.Segmenter = (*GoCVSegmenter)(nil)
