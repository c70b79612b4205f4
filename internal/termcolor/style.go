package termcolor

import (
	"fmt"
	"io"
	"strings"
)

type Style struct {
	Bold      bool
	Underline bool
	Dim       bool
	FGBasic   *int
	FG256     *int
	FGTrue    *[3]uint8
}

func Apply(s Style, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	codes := sgrCodes(s)
	if len(codes) == 0 {
		return text
	}
	return "\x1b[" + strings.Join(codes, ";") + "m" + text + "\x1b[0m"
}

func sgrCodes(s Style) []string {
	codes := make([]string, 0, 6)
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	if s.FGTrue != nil {
		rgb := *s.FGTrue
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", rgb[0], rgb[1], rgb[2]))
	} else if s.FG256 != nil {
		codes = append(codes, fmt.Sprintf("38;5;%d", *s.FG256))
	} else if s.FGBasic != nil {
		codes = append(codes, fmt.Sprintf("3%d", *s.FGBasic))
	}
	return codes
}

// Painter holds the detected capabilities of one output stream.
type Painter struct {
	Enabled bool
	Profile Profile
	Scheme  Scheme
}

// NewPainter resolves mode against out and the environment.
func NewPainter(mode ColorMode, out io.Writer, env map[string]string) Painter {
	return Painter{
		Enabled: Enabled(mode, out, env),
		Profile: DetectProfile(env),
		Scheme:  DetectScheme(env),
	}
}

func (p Painter) Header(text string) string {
	return Apply(HeaderStyle(), text, p.Enabled)
}

func (p Painter) Tag(tag string) string {
	return Apply(TagStyle(tag, p.Scheme, p.Profile), tag, p.Enabled)
}

// Priority paints text with the colour of priority.
func (p Painter) Priority(priority int, text string) string {
	return Apply(PriorityStyle(priority, p.Scheme, p.Profile), text, p.Enabled)
}

func (p Painter) Dim(text string) string {
	return Apply(Style{Dim: true}, text, p.Enabled)
}
