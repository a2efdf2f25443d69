package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	charW = 8
	charH = 16

	// gif frames are limited to 256 palette entries
	maxPalette = 256
)

// Recorder rasterises canvas frames into an animated GIF. Every distinct
// cell colour gets a palette slot until the palette is full; later colours
// fall back to white.
type Recorder struct {
	frames  []*image.Paletted
	palette color.Palette
	index   map[string]uint8
}

func NewRecorder() *Recorder {
	return &Recorder{
		palette: color.Palette{color.Black, color.White},
		index:   map[string]uint8{"": 1},
	}
}

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) colorIndex(hex string) uint8 {
	if i, ok := r.index[hex]; ok {
		return i
	}
	if len(r.palette) >= maxPalette {
		return 1
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 1
	}
	i := uint8(len(r.palette))
	r.palette = append(r.palette, c.Clamped())
	r.index[hex] = i
	return i
}

// Capture appends the current canvas as one frame.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), nil)
	dotW, dotH := charW/2, charH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := c.Grid[row][col] - blank
			if pattern <= 0 {
				continue
			}
			ci := r.colorIndex(c.Colors[row][col])
			for sy := 0; sy < 4; sy++ {
				for sx := 0; sx < 2; sx++ {
					if pattern&rune(pixelMap[sy][sx]) == 0 {
						continue
					}
					x0, y0 := col*charW+sx*dotW, row*charH+sy*dotH
					for py := y0; py < y0+dotH; py++ {
						for px := x0; px < x0+dotW; px++ {
							img.SetColorIndex(px, py, ci)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Encode writes all captured frames as a looping GIF at 50 fps. The
// shared palette is attached to every frame here, once it is final.
func (r *Recorder) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		f.Palette = r.palette
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, 2)
	}
	return gif.EncodeAll(w, &anim)
}
