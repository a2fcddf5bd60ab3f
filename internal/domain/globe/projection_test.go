package globe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatProjection() Projection {
	return Projection{Scale: 200, Width: ViewportWidth, Height: ViewportHeight}
}

func TestProject_Centre(t *testing.T) {
	p := flatProjection()
	pt, ok := p.Project(0, 0)
	assert.True(t, ok)
	assert.InDelta(t, 300.0, pt.X, eps)
	assert.InDelta(t, 300.0, pt.Y, eps)
	assert.Equal(t, Point{X: 300, Y: 300}, p.Center())
}

func TestProject_EastAndNorth(t *testing.T) {
	p := flatProjection()
	pt, ok := p.Project(45, 0)
	assert.True(t, ok)
	assert.InDelta(t, 300+200*math.Sin(math.Pi/4), pt.X, 1e-9)

	pt, ok = p.Project(0, 30)
	assert.True(t, ok)
	assert.InDelta(t, 300-200*0.5, pt.Y, 1e-9, "north is up")

	_, ok = p.Project(90, 0)
	assert.False(t, ok, "horizon counts as hidden")
	_, ok = p.Project(180, 0)
	assert.False(t, ok)
}

func TestProject_InitialCameraCentre(t *testing.T) {
	p := NewProjection(NewRotationState(), ViewportWidth, ViewportHeight)
	pt, ok := p.Project(30, 20)
	require.True(t, ok)
	assert.InDelta(t, 300.0, pt.X, 1e-9)
	assert.InDelta(t, 300.0, pt.Y, 1e-9)
}

func TestVisible_GreatCircleDistance(t *testing.T) {
	p := NewProjection(NewRotationState(), ViewportWidth, ViewportHeight)
	assert.True(t, p.Visible(-74.006, 40.7128), "New York faces the initial camera")
	assert.False(t, p.Visible(115.8605, -31.9505), "Welshpool is behind")
	assert.True(t, p.Visible(119, 0))
	assert.False(t, p.Visible(-150, -20), "antipode of the view centre")
}

func TestInvert_RoundTrip(t *testing.T) {
	p := NewProjection(NewRotationState(), ViewportWidth, ViewportHeight)
	for _, c := range [][2]float64{{30, 20}, {-0.1278, 51.5074}, {13.405, 52.52}, {28.3228, -15.3875}} {
		pt, ok := p.Project(c[0], c[1])
		require.True(t, ok, c)
		lng, lat, ok := p.Invert(pt.X, pt.Y)
		require.True(t, ok)
		assert.InDelta(t, c[0], lng, 1e-6)
		assert.InDelta(t, c[1], lat, 1e-6)
	}
}

func TestInvert_OutsideDisc(t *testing.T) {
	p := flatProjection()
	_, _, ok := p.Invert(0, 0)
	assert.False(t, ok)
	_, _, ok = (Projection{}).Invert(0, 0)
	assert.False(t, ok)
}

func TestHorizon(t *testing.T) {
	p := flatProjection()
	pts := p.Horizon(36)
	require.Len(t, pts, 37)
	for _, pt := range pts {
		assert.InDelta(t, 200.0, math.Hypot(pt.X-300, pt.Y-300), 1e-9)
	}
	assert.InDelta(t, pts[0].X, pts[36].X, 1e-9)
}

//Personal.AI order the ending
