//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/segment"
)

func TestGoCVSegmenterStub(t *testing.T) {
	s, err := NewGoCVSegmenter(segment.DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = s.Segment(context.Background(), []byte{1, 2, 3}, port.SegmentOptions{})
	require.ErrorIs(t, err, ErrGoCVDisabled)
}
