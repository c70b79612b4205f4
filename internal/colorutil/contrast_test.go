package colorutil

import "testing"

func TestContrastRatio(t *testing.T) {
	cases := []struct {
		name     string
		fg, bg   RGB
		minRatio float64
	}{
		{"blackOnWhite", RGB{0, 0, 0}, RGB{255, 255, 255}, 4.5},
		{"whiteOnBlack", RGB{255, 255, 255}, RGB{0, 0, 0}, 4.5},
		{"darkRedOnWhite", RGB{185, 28, 28}, RGB{255, 255, 255}, 4.5},
		{"amberOnBlack", RGB{245, 158, 11}, RGB{17, 24, 39}, 4.5},
	}
	for _, tc := range cases {
		ratio := ContrastRatio(tc.fg, tc.bg)
		if ratio < tc.minRatio {
			t.Fatalf("%s contrast ratio %.2f < %.2f", tc.name, ratio, tc.minRatio)
		}
	}
	if r := ContrastRatio(Black, White); r < 20.9 || r > 21.1 {
		t.Fatalf("black/white contrast should be 21, got %.2f", r)
	}
}

func TestMix(t *testing.T) {
	if got := Mix(Black, White, 0); got != Black {
		t.Fatalf("t=0 should return a, got %v", got)
	}
	if got := Mix(Black, White, 1); got != White {
		t.Fatalf("t=1 should return b, got %v", got)
	}
	if got := Mix(Black, White, 0.5); got != (RGB{128, 128, 128}) {
		t.Fatalf("midpoint mismatch: %v", got)
	}
}

func TestEnsureContrast(t *testing.T) {
	light := RGB{249, 250, 251}
	yellow := RGB{250, 204, 21}
	got := EnsureContrast(yellow, light, 4.5)
	if r := ContrastRatio(got, light); r < 4.5 {
		t.Fatalf("yellow on light background still low contrast: %.2f (%v)", r, got)
	}
	if got.R < got.B {
		t.Fatalf("hue should stay warm after darkening: %v", got)
	}

	dark := RGB{17, 24, 39}
	red := RGB{239, 68, 68}
	if got := EnsureContrast(red, dark, 4.5); got != red {
		t.Fatalf("sufficient contrast must be left untouched, got %v", got)
	}
}
