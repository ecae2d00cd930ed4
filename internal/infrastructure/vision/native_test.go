package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/segment"
)

// scanPNG белый скан 800×600 с одной фотографией в тёмной рамке
func scanPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	frame := image.Rect(200, 150, 500, 350)
	draw.Draw(img, frame, &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	draw.Draw(img, frame.Inset(3), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newNative(t *testing.T) *NativeSegmenter {
	t.Helper()
	s, err := NewNativeSegmenter(segment.DefaultConfig(), nil)
	require.NoError(t, err)
	return s
}

func TestNativeSegmenter_Segment(t *testing.T) {
	s := newNative(t)

	result, err := s.Segment(context.Background(), scanPNG(t), port.SegmentOptions{})
	require.NoError(t, err)
	require.Equal(t, entity.PolicyAreaSize, result.Policy)
	require.Equal(t, 800, result.Width)
	require.Len(t, result.Regions, 1)
	require.Len(t, result.Snapshots, len(entity.SnapshotNames()))

	result, err = s.Segment(context.Background(), scanPNG(t), port.SegmentOptions{Policy: entity.PolicyAspectRatio})
	require.NoError(t, err)
	require.Equal(t, entity.PolicyAspectRatio, result.Policy)
	require.Len(t, result.Regions, 1)
}

func TestNativeSegmenter_PaddingOverride(t *testing.T) {
	s := newNative(t)
	data := scanPNG(t)

	padded, err := s.Segment(context.Background(), data, port.SegmentOptions{})
	require.NoError(t, err)
	zero := 0
	tight, err := s.Segment(context.Background(), data, port.SegmentOptions{Padding: &zero})
	require.NoError(t, err)

	require.Len(t, padded.Regions, 1)
	require.Len(t, tight.Regions, 1)
	require.Equal(t, tight.Regions[0].Box.Width+20, padded.Regions[0].Box.Width)
	require.Equal(t, tight.Regions[0].Box.X-10, padded.Regions[0].Box.X)
}

func TestNativeSegmenter_Errors(t *testing.T) {
	s := newNative(t)
	ctx := context.Background()

	negative := -5
	_, err := s.Segment(ctx, scanPNG(t), port.SegmentOptions{Padding: &negative})
	require.True(t, entity.IsConfigError(err))

	_, err = s.Segment(ctx, scanPNG(t), port.SegmentOptions{Policy: "largest"})
	require.True(t, entity.IsConfigError(err))

	_, err = s.Segment(ctx, []byte("not an image"), port.SegmentOptions{})
	require.True(t, entity.IsDecodeError(err))

	_, err = s.Segment(ctx, nil, port.SegmentOptions{})
	require.True(t, errors.Is(err, entity.ErrNoImage))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Segment(cancelled, scanPNG(t), port.SegmentOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewNativeSegmenter_InvalidConfig(t *testing.T) {
	cfg := segment.DefaultConfig()
	cfg.BlockSize = 4
	_, err := NewNativeSegmenter(cfg, nil)
	require.True(t, entity.IsConfigError(err))
}
