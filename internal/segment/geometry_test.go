package segment

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArcLengthAndArea(t *testing.T) {
	b := Boundary{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5}}
	require.InDelta(t, 30.0, ArcLength(b, true), 1e-9)
	require.InDelta(t, 25.0, ArcLength(b, false), 1e-9)
	require.InDelta(t, 50.0, Area(b), 1e-9)

	require.Zero(t, Area(Boundary{{X: 1, Y: 1}, {X: 2, Y: 2}}))
	require.Zero(t, ArcLength(Boundary{{X: 1, Y: 1}}, true))
}

func TestBoundingBox_InclusivePixels(t *testing.T) {
	b := Boundary{{X: 400, Y: 425}, {X: 599, Y: 425}, {X: 599, Y: 574}, {X: 400, Y: 574}}
	box := BoundingBox(b)
	require.Equal(t, image.Rect(400, 425, 600, 575), box)
	require.Equal(t, 200, box.Dx())
	require.Equal(t, 150, box.Dy())
	require.Equal(t, image.Rectangle{}, BoundingBox(nil))
}

func TestApproxPolygon_DropsSmallBump(t *testing.T) {
	mask := newMask(200, 200)
	fillMask(mask, image.Rect(50, 50, 150, 110), 255)
	fillMask(mask, image.Rect(100, 110, 101, 111), 255)

	boundaries := TraceExternal(mask)
	require.Len(t, boundaries, 1)
	require.Greater(t, len(boundaries[0]), 4)

	approx := ApproxPolygon(boundaries[0], 0.02*ArcLength(boundaries[0], true))
	require.Equal(t, Boundary{
		{X: 50, Y: 50},
		{X: 149, Y: 50},
		{X: 149, Y: 109},
		{X: 50, Y: 109},
	}, approx)
	require.InDelta(t, 99.0*59.0, Area(approx), 1e-9)
}

func TestApproxPolygon_SmallInputsCopied(t *testing.T) {
	b := Boundary{{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 5, Y: 5}}
	out := ApproxPolygon(b, 100)
	require.Equal(t, b, out)
	out[0].X = 42
	require.Equal(t, 1, b[0].X)
}

func TestSegmentDistance(t *testing.T) {
	require.InDelta(t, 3.0, segmentDistance(image.Pt(5, 3), image.Pt(0, 0), image.Pt(10, 0)), 1e-9)
	require.InDelta(t, 5.0, segmentDistance(image.Pt(3, 4), image.Pt(0, 0), image.Pt(0, 0)), 1e-9)
}

func TestPadAndClamp(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 200)

	require.Equal(t, image.Rect(40, 40, 80, 80),
		PadAndClamp(image.Rect(50, 50, 70, 70), 10, bounds))
	require.Equal(t, image.Rect(0, 0, 120, 120),
		PadAndClamp(image.Rect(5, 5, 105, 105), 10, bounds))
	require.Equal(t, image.Rect(140, 140, 200, 200),
		PadAndClamp(image.Rect(150, 150, 200, 200), 10, bounds))
	require.Equal(t, image.Rect(0, 0, 200, 200),
		PadAndClamp(image.Rect(0, 0, 200, 200), 10, bounds))
}

func TestMergeOverlapping(t *testing.T) {
	a := image.Rect(0, 0, 100, 100)
	b := image.Rect(10, 10, 110, 110)
	c := image.Rect(300, 300, 400, 400)

	require.InDelta(t, 8100.0/11900.0, IoU(a, b), 1e-9)
	require.Zero(t, IoU(a, c))

	merged := MergeOverlapping([]image.Rectangle{a, c, b}, 0.45)
	require.Equal(t, []image.Rectangle{image.Rect(0, 0, 110, 110), c}, merged)

	kept := MergeOverlapping([]image.Rectangle{a, c}, 0.45)
	require.Equal(t, []image.Rectangle{a, c}, kept)
}

func TestMergeOverlapping_ThresholdIsInclusive(t *testing.T) {
	a := image.Rect(0, 0, 10, 10)
	b := image.Rect(5, 0, 15, 10)
	require.Equal(t, 1.0/3.0, IoU(a, b))

	merged := MergeOverlapping([]image.Rectangle{a, b}, 1.0/3.0)
	require.Equal(t, []image.Rectangle{image.Rect(0, 0, 15, 10)}, merged)
}
