package segment

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTraceExternal_Rectangle(t *testing.T) {
	mask := newMask(300, 200)
	fillMask(mask, image.Rect(50, 40, 250, 190), 255)

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 1)
	require.Equal(t, Boundary{
		{X: 50, Y: 40},
		{X: 249, Y: 40},
		{X: 249, Y: 189},
		{X: 50, Y: 189},
	}, boundaries[0])
}

func TestTraceExternal_EmptyMask(t *testing.T) {
	require.Empty(t, TraceExternal(newMask(50, 50)))
	require.Empty(t, TraceExternal(newMask(0, 0)))
}

func TestTraceExternal_SinglePixel(t *testing.T) {
	mask := newMask(10, 10)
	mask.SetGray(3, 4, color.Gray{Y: 255})

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 1)
	require.Equal(t, Boundary{{X: 3, Y: 4}}, boundaries[0])
}

func TestTraceExternal_SkipsNestedComponents(t *testing.T) {
	mask := newMask(200, 200)
	// рамка с пятном внутри дыры
	fillMask(mask, image.Rect(10, 10, 110, 110), 255)
	fillMask(mask, image.Rect(15, 15, 105, 105), 0)
	fillMask(mask, image.Rect(40, 40, 60, 60), 255)
	// отдельное пятно ниже
	fillMask(mask, image.Rect(20, 150, 80, 180), 255)

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 2)
	require.Equal(t, image.Rect(10, 10, 110, 110), BoundingBox(boundaries[0]))
	require.Equal(t, image.Rect(20, 150, 80, 180), BoundingBox(boundaries[1]))
}

func TestTraceExternal_TouchesImageEdge(t *testing.T) {
	mask := newMask(100, 100)
	fillMask(mask, mask.Bounds(), 255)

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 1)
	require.Equal(t, mask.Bounds(), BoundingBox(boundaries[0]))
}

func TestTraceExternal_ThinLine(t *testing.T) {
	mask := newMask(20, 5)
	fillMask(mask, image.Rect(2, 2, 12, 3), 255)

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 1)
	require.Equal(t, Boundary{{X: 2, Y: 2}, {X: 11, Y: 2}}, boundaries[0])
}

func TestTraceExternal_DiagonalNeighboursConnect(t *testing.T) {
	mask := newMask(10, 10)
	mask.SetGray(2, 2, color.Gray{Y: 255})
	mask.SetGray(3, 3, color.Gray{Y: 255})
	mask.SetGray(4, 4, color.Gray{Y: 255})

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 1)
	require.Equal(t, image.Rect(2, 2, 5, 5), BoundingBox(boundaries[0]))
}
