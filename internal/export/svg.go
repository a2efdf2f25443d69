// Package export renders simulation output as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/viz"
)

const background = "#0a0a0a"

var defaultStroke = colorful.Color{R: 0, G: 1, B: 0}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot,
// filled with the cell's colour.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fill := viz.TagColor(canvas.Colors[y/4][x/2], defaultStroke).Hex()
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius, fill)
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// TrajectoriesToSVG draws one path per body across frames, coloured by
// the tag of bodies[i], with a dot at the last position. Both axes share
// one scale so orbits keep their shape. Non-finite samples break the path.
func TrajectoriesToSVG(frames []sim.Frame, bodies []dynamo.Body, width, height int) string {
	if len(frames) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, f := range frames {
		for _, k := range f.Bodies {
			if !k.Position.IsFinite() {
				continue
			}
			minX, maxX = math.Min(minX, k.Position.X), math.Max(maxX, k.Position.X)
			minY, maxY = math.Min(minY, k.Position.Y), math.Max(maxY, k.Position.Y)
		}
	}
	if minX > maxX {
		return ""
	}

	// Add padding
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	scale := math.Min(float64(width), float64(height)) / (span * 1.2)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	project := func(p dynamo.Vec2) (float64, float64) {
		return (p.X-cx)*scale + float64(width)/2, (p.Y-cy)*scale + float64(height)/2
	}

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height))

	n := len(frames[0].Bodies)
	for i := 0; i < n; i++ {
		stroke := defaultStroke
		if i < len(bodies) {
			stroke = viz.TagColor(bodies[i].Tag, defaultStroke)
		}

		var d strings.Builder
		pen := false
		var last dynamo.Vec2
		seen := false
		for _, f := range frames {
			if i >= len(f.Bodies) || !f.Bodies[i].Position.IsFinite() {
				pen = false
				continue
			}
			x, y := project(f.Bodies[i].Position)
			if pen {
				fmt.Fprintf(&d, " L%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&d, " M%.1f,%.1f", x, y)
				pen = true
			}
			last, seen = f.Bodies[i].Position, true
		}
		if !seen {
			continue
		}

		fmt.Fprintf(&sb, "<path id=\"body-%d\" fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"%s\"/>\n",
			i, stroke.Hex(), strings.TrimSpace(d.String()))
		x, y := project(last)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, stroke.Hex())
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
