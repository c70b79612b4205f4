package termcolor

import (
	"math"
	"strings"

	"github.com/phyten/todoreview/internal/colorutil"
	"github.com/phyten/todoreview/internal/model"
)

var (
	darkBackground  = colorutil.RGB{R: 17, G: 24, B: 39}
	lightBackground = colorutil.RGB{R: 249, G: 250, B: 251}
)

type tagColor struct {
	basic int
	rgb   colorutil.RGB
	bold  bool
}

var tagColors = map[string]tagColor{
	"TODO":     {basic: 3, rgb: colorutil.RGB{R: 250, G: 204, B: 21}, bold: true},
	"FIXME":    {basic: 1, rgb: colorutil.RGB{R: 239, G: 68, B: 68}, bold: true},
	"BUG":      {basic: 1, rgb: colorutil.RGB{R: 220, G: 38, B: 38}, bold: true},
	"HACK":     {basic: 5, rgb: colorutil.RGB{R: 192, G: 132, B: 252}},
	"XXX":      {basic: 5, rgb: colorutil.RGB{R: 217, G: 70, B: 239}},
	"NOTE":     {basic: 6, rgb: colorutil.RGB{R: 34, G: 211, B: 238}},
	"OPTIMIZE": {basic: 4, rgb: colorutil.RGB{R: 96, G: 165, B: 250}},
}

// PriorityScale is the priority rendered fully green; smaller numbers shade toward red.
const PriorityScale = 9

func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

// TagStyle は既知のタグに色を付ける。未知のタグは装飾しない。
func TagStyle(tag string, scheme Scheme, profile Profile) Style {
	c, ok := tagColors[strings.ToUpper(strings.TrimSpace(tag))]
	if !ok {
		return Style{}
	}
	s := Style{Bold: c.bold}
	switch profile {
	case ProfileTrueColor:
		rgb := readable(c.rgb, scheme)
		s.FGTrue = &[3]uint8{rgb.R, rgb.G, rgb.B}
	case ProfileANSI256:
		rgb := readable(c.rgb, scheme)
		idx := rgbToANSI256(rgb.R, rgb.G, rgb.B)
		s.FG256 = &idx
	default:
		color := c.basic
		s.FGBasic = &color
	}
	return s
}

// PriorityStyle shades explicit priorities from red (0) to green (PriorityScale
// and above). Records without a priority are dimmed.
func PriorityStyle(priority int, scheme Scheme, profile Profile) Style {
	if priority >= model.SentinelPriority {
		return Style{Dim: true}
	}
	if priority < 0 {
		priority = 0
	}
	switch profile {
	case ProfileTrueColor:
		r, g, b := gradientRGB(priority, PriorityScale)
		rgb := readable(colorutil.RGB{R: r, G: g, B: b}, scheme)
		return Style{FGTrue: &[3]uint8{rgb.R, rgb.G, rgb.B}}
	case ProfileANSI256:
		r, g, b := gradientRGB(priority, PriorityScale)
		rgb := readable(colorutil.RGB{R: r, G: g, B: b}, scheme)
		idx := rgbToANSI256(rgb.R, rgb.G, rgb.B)
		return Style{FG256: &idx}
	default:
		color := priorityBucketColor(priority)
		return Style{FGBasic: &color}
	}
}

func readable(rgb colorutil.RGB, scheme Scheme) colorutil.RGB {
	bg := darkBackground
	if scheme == SchemeLight {
		bg = lightBackground
	}
	return colorutil.EnsureContrast(rgb, bg, 4.5)
}

// gradientRGB maps 0 to red and scale (or more) to green, through yellow.
func gradientRGB(priority int, scale float64) (uint8, uint8, uint8) {
	if scale <= 0 {
		scale = PriorityScale
	}
	t := float64(priority) / scale
	if t <= 0 {
		return 255, 0, 0
	}
	if t >= 1 {
		return 0, 255, 0
	}
	if t < 0.5 {
		ratio := t / 0.5
		g := uint8(math.Round(255 * ratio))
		return 255, g, 0
	}
	ratio := (t - 0.5) / 0.5
	r := uint8(math.Round(255 * (1 - ratio)))
	return r, 255, 0
}

func priorityBucketColor(priority int) int {
	switch {
	case priority <= 1:
		return 1
	case priority <= 3:
		return 3
	case priority <= 6:
		return 6
	default:
		return 2
	}
}

func rgbToANSI256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (int(r)-8)*24/247
	}
	rr := int(r) * 5 / 255
	gg := int(g) * 5 / 255
	bb := int(b) * 5 / 255
	return 16 + 36*rr + 6*gg + bb
}
