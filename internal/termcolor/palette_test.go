package termcolor

import (
	"testing"

	"github.com/phyten/todoreview/internal/colorutil"
	"github.com/phyten/todoreview/internal/model"
)

func TestHeaderStyle(t *testing.T) {
	s := HeaderStyle()
	if !s.Bold || !s.Underline {
		t.Fatalf("header style should enable bold+underline: %+v", s)
	}
}

func TestTagStyleRespectsScheme(t *testing.T) {
	todoDark := TagStyle("todo", SchemeDark, ProfileBasic8)
	if todoDark.FGBasic == nil || *todoDark.FGBasic != 3 || !todoDark.Bold {
		t.Fatalf("TODO dark basic style mismatch: %+v", todoDark)
	}
	todoLight := TagStyle("TODO", SchemeLight, ProfileANSI256)
	if todoLight.FG256 == nil {
		t.Fatalf("TODO light 256 color missing: %+v", todoLight)
	}
	for _, tag := range []string{"TODO", "FIXME", "NOTE"} {
		s := TagStyle(tag, SchemeLight, ProfileTrueColor)
		if s.FGTrue == nil {
			t.Fatalf("%s light truecolor missing fg: %+v", tag, s)
		}
		rgb := *s.FGTrue
		contrast := colorutil.ContrastRatio(
			colorutil.RGB{R: rgb[0], G: rgb[1], B: rgb[2]},
			lightBackground,
		)
		if contrast < 4.5 {
			t.Fatalf("%s light truecolor contrast %.2f < 4.5 (rgb=%v)", tag, contrast, rgb)
		}
	}
	none := TagStyle("CUSTOM", SchemeDark, ProfileBasic8)
	if none.FGBasic != nil || none.FG256 != nil || none.FGTrue != nil {
		t.Fatalf("unknown tags should have no color: %+v", none)
	}
}

func TestPriorityStyleBasicBuckets(t *testing.T) {
	tests := []struct {
		priority int
		want     int
	}{
		{0, 1},
		{1, 1},
		{2, 3},
		{5, 6},
		{9, 2},
		{42, 2},
	}
	for _, tc := range tests {
		style := PriorityStyle(tc.priority, SchemeDark, ProfileBasic8)
		if style.FGBasic == nil {
			t.Fatalf("priority %d missing basic color", tc.priority)
		}
		if *style.FGBasic != tc.want {
			t.Fatalf("priority %d expected color %d, got %d", tc.priority, tc.want, *style.FGBasic)
		}
	}
}

func TestPriorityStyleSentinelIsDim(t *testing.T) {
	s := PriorityStyle(model.SentinelPriority, SchemeDark, ProfileTrueColor)
	if !s.Dim || s.FGTrue != nil {
		t.Fatalf("records without priority should be dim only: %+v", s)
	}
}

func TestPriorityStyleGradient(t *testing.T) {
	style := PriorityStyle(0, SchemeDark, ProfileTrueColor)
	if style.FGTrue == nil {
		t.Fatalf("true color style missing value")
	}
	rgb := *style.FGTrue
	if rgb[0] <= rgb[1] {
		t.Fatalf("priority 0 should be red-dominant, got %v", rgb)
	}
	style = PriorityStyle(PriorityScale, SchemeDark, ProfileTrueColor)
	rgb = *style.FGTrue
	if rgb[1] <= rgb[0] {
		t.Fatalf("priority %d should be green-dominant, got %v", PriorityScale, rgb)
	}
	if got := rgbToANSI256(0, 255, 0); got != 46 {
		t.Fatalf("pure green should map to 46, got %d", got)
	}
}
