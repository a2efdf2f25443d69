package viz

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

const defaultTrailLen = 120

var bodyFallback = colorful.Color{R: 0.9, G: 0.9, B: 0.9}

// trail is a fixed-size ring of past positions.
type trail struct {
	pts  []dynamo.Vec2
	next int
	full bool
}

func (t *trail) push(p dynamo.Vec2) {
	t.pts[t.next] = p
	t.next++
	if t.next == len(t.pts) {
		t.next, t.full = 0, true
	}
}

// each visits the stored points oldest first.
func (t *trail) each(fn func(dynamo.Vec2)) {
	if t.full {
		for _, p := range t.pts[t.next:] {
			fn(p)
		}
	}
	for _, p := range t.pts[:t.next] {
		fn(p)
	}
}

// Scene draws bodies and their recent trails onto a canvas.
type Scene struct {
	Canvas *Canvas
	Camera *Camera
	Theme  Theme

	trailLen int
	trails   []trail
}

func NewScene(w, h int) *Scene {
	return &Scene{
		Canvas:   NewCanvas(w, h),
		Camera:   NewCamera(),
		Theme:    Themes[0],
		trailLen: defaultTrailLen,
	}
}

// Record appends the current position of every body to its trail. New
// bodies get a new trail.
func (s *Scene) Record(bodies []dynamo.Body) {
	if s.trailLen <= 0 {
		return
	}
	for len(s.trails) < len(bodies) {
		s.trails = append(s.trails, trail{pts: make([]dynamo.Vec2, s.trailLen)})
	}
	for i := range bodies {
		s.trails[i].push(bodies[i].Position)
	}
}

func (s *Scene) ResetTrails() { s.trails = s.trails[:0] }

// Resize replaces the canvas, keeping the camera and trails.
func (s *Scene) Resize(w, h int) {
	if w == s.Canvas.Width && h == s.Canvas.Height {
		return
	}
	s.Canvas = NewCanvas(w, h)
}

// Draw renders trails then bodies. Bodies are drawn as filled discs of
// their true radius, at least one dot wide.
func (s *Scene) Draw(bodies []dynamo.Body) {
	c := s.Canvas
	sw, sh := c.SubWidth(), c.SubHeight()
	c.Clear()

	for i := range s.trails {
		s.trails[i].each(func(p dynamo.Vec2) {
			if x, y, ok := s.Camera.Project(p, sw, sh); ok {
				c.SetColor(x, y, s.Theme.Trail)
			}
		})
	}

	for _, b := range bodies {
		x, y, ok := s.Camera.Project(b.Position, sw, sh)
		r := s.Camera.Pixels(b.Radius)
		if !ok && (r == 0 || !b.Position.IsFinite()) {
			continue
		}
		if x+r < 0 || y+r < 0 || x-r >= sw || y-r >= sh {
			continue
		}
		c.FillCircle(x, y, r, TagColor(b.Tag, bodyFallback).Hex())
	}
}

// DrawBodies draws bodies on a fresh w×h canvas with the camera fitted
// to them.
func DrawBodies(bodies []dynamo.Body, w, h int) *Canvas {
	s := NewScene(w, h)
	s.Camera.Fit(bodies, s.Canvas.SubWidth(), s.Canvas.SubHeight())
	s.Draw(bodies)
	return s.Canvas
}

// RenderBodies draws a single framed picture of bodies.
func RenderBodies(bodies []dynamo.Body, w, h int) string {
	return DrawBodies(bodies, w, h).Render()
}

// Swatches renders one coloured dot per body tag.
func Swatches(bodies []dynamo.Body) string {
	var b strings.Builder
	for _, body := range bodies {
		b.WriteString(TagStyle(body.Tag).Render("●"))
	}
	return b.String()
}

// RenderTrajectories draws the path of every body across frames. tags
// colours the paths by body index and may be shorter than the body count.
func RenderTrajectories(frames []sim.Frame, tags []string, w, h int) string {
	s := NewScene(w, h)
	if len(frames) == 0 || len(frames[0].Bodies) == 0 {
		return s.Canvas.Render()
	}

	lo := dynamo.V2(math.Inf(1), math.Inf(1))
	hi := dynamo.V2(math.Inf(-1), math.Inf(-1))
	for _, f := range frames {
		for _, k := range f.Bodies {
			if !k.Position.IsFinite() {
				continue
			}
			lo.X, lo.Y = min(lo.X, k.Position.X), min(lo.Y, k.Position.Y)
			hi.X, hi.Y = max(hi.X, k.Position.X), max(hi.Y, k.Position.Y)
		}
	}
	if lo.X > hi.X {
		return s.Canvas.Render()
	}
	sw, sh := s.Canvas.SubWidth(), s.Canvas.SubHeight()
	s.Camera.FitBox(lo, hi, sw, sh)

	for i := range frames[0].Bodies {
		color := bodyFallback.Hex()
		if i < len(tags) {
			color = TagColor(tags[i], bodyFallback).Hex()
		}
		px, py, prev := s.Camera.Project(frames[0].Bodies[i].Position, sw, sh)
		for _, f := range frames[1:] {
			if i >= len(f.Bodies) {
				break
			}
			x, y, ok := s.Camera.Project(f.Bodies[i].Position, sw, sh)
			switch {
			case ok && prev:
				s.Canvas.DrawLine(px, py, x, y, color)
			case ok:
				s.Canvas.SetColor(x, y, color)
			}
			px, py, prev = x, y, ok
		}
	}
	return s.Canvas.Render()
}
