package viz

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	minScale = 1e-3
	maxScale = 1e12

	// projections beyond this many sub-pixels are treated as off screen
	maxPixels = 1 << 20
)

// Camera maps world coordinates onto canvas sub-pixels. Scale is world
// units per sub-pixel. World y grows downwards, like the screen.
type Camera struct {
	Center dynamo.Vec2
	Scale  float64
}

func NewCamera() *Camera {
	return &Camera{Scale: 1}
}

func (c *Camera) ZoomIn()  { c.Scale = math.Max(minScale, c.Scale/1.25) }
func (c *Camera) ZoomOut() { c.Scale = math.Min(maxScale, c.Scale*1.25) }

// Pan moves the view by (dx, dy) sub-pixels.
func (c *Camera) Pan(dx, dy int) {
	c.Center.X += float64(dx) * c.Scale
	c.Center.Y += float64(dy) * c.Scale
}

// Project converts a world position to sub-pixel coordinates on a
// sw x sh canvas. The bool reports whether the point is on screen.
func (c *Camera) Project(p dynamo.Vec2, sw, sh int) (int, int, bool) {
	if !p.IsFinite() {
		return 0, 0, false
	}
	fx := math.Floor((p.X - c.Center.X) / c.Scale)
	fy := math.Floor((p.Y - c.Center.Y) / c.Scale)
	if math.Abs(fx) > maxPixels || math.Abs(fy) > maxPixels {
		return 0, 0, false
	}
	x, y := int(fx)+sw/2, int(fy)+sh/2
	return x, y, x >= 0 && x < sw && y >= 0 && y < sh
}

// Unproject converts sub-pixel coordinates back to the world position at
// the centre of that sub-pixel.
func (c *Camera) Unproject(x, y, sw, sh int) dynamo.Vec2 {
	return dynamo.Vec2{
		X: c.Center.X + (float64(x-sw/2)+0.5)*c.Scale,
		Y: c.Center.Y + (float64(y-sh/2)+0.5)*c.Scale,
	}
}

// Pixels converts a world length to sub-pixels, rounding down.
func (c *Camera) Pixels(l float64) int {
	return int(math.Min(l/c.Scale, maxPixels))
}

// Fit centres the camera on the bodies' bounding box and picks a scale
// that keeps every body inside a sw x sh canvas with a small margin.
func (c *Camera) Fit(bodies []dynamo.Body, sw, sh int) {
	if len(bodies) == 0 {
		return
	}
	lo, hi := bodies[0].Position, bodies[0].Position
	for _, b := range bodies {
		lo.X = math.Min(lo.X, b.Position.X-b.Radius)
		lo.Y = math.Min(lo.Y, b.Position.Y-b.Radius)
		hi.X = math.Max(hi.X, b.Position.X+b.Radius)
		hi.Y = math.Max(hi.Y, b.Position.Y+b.Radius)
	}
	c.FitBox(lo, hi, sw, sh)
}

// FitBox frames the axis-aligned box lo..hi.
func (c *Camera) FitBox(lo, hi dynamo.Vec2, sw, sh int) {
	if sw <= 0 || sh <= 0 {
		return
	}
	c.Center = lo.Add(hi).Scale(0.5)
	span := math.Max((hi.X-lo.X)/float64(sw), (hi.Y-lo.Y)/float64(sh))
	c.Scale = math.Min(maxScale, math.Max(minScale, span*1.1))
}
