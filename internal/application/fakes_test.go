package app

import (
	"context"
	"errors"
	"image"
	"sync"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
)

// fakeSegmenter возвращает по одной области на каждый байт входа, "bad" считает битым файлом
type fakeSegmenter struct {
	mu    sync.Mutex
	calls []port.SegmentOptions
}

func (f *fakeSegmenter) Segment(ctx context.Context, imageData []byte, opts port.SegmentOptions) (*entity.ProcessingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if string(imageData) == "bad" {
		return nil, &entity.DecodeError{Cause: errors.New("bad bytes")}
	}
	policy := opts.Policy
	if policy == "" {
		policy = entity.PolicyAreaSize
	}
	return fakeResult(policy, len(imageData)), nil
}

func fakeResult(policy entity.Policy, n int) *entity.ProcessingResult {
	result := &entity.ProcessingResult{
		Width:     100,
		Height:    100,
		Policy:    policy,
		Snapshots: make(map[string]image.Image),
	}
	for i := 0; i < n; i++ {
		result.Regions = append(result.Regions, entity.Region{
			Box:   entity.BoundingBox{X: i, Y: i, Width: 10, Height: 10},
			Image: image.NewNRGBA(image.Rect(0, 0, 10, 10)),
		})
	}
	for _, name := range entity.SnapshotNames() {
		result.Snapshots[name] = image.NewGray(image.Rect(0, 0, 100, 100))
	}
	return result
}

// fakeRemote клиент сервиса поверх fakeSegmenter
type fakeRemote struct {
	seg fakeSegmenter
}

func (f *fakeRemote) Split(ctx context.Context, filename string, imageData []byte, policy entity.Policy) (*entity.ProcessingResult, error) {
	result, err := f.seg.Segment(ctx, imageData, port.SegmentOptions{Policy: policy})
	if err != nil {
		return nil, err
	}
	for i := range result.Regions {
		result.Regions[i].Source = filename
	}
	return result, nil
}
