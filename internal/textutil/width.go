// Package textutil measures and fits text in terminal cells. Widths are
// counted per grapheme cluster so combining marks and emoji sequences are
// never split.
package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// CSI (colours) and OSC (hyperlinks) sequences.
var ansiRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	if strings.IndexByte(s, 0x1b) < 0 {
		return s
	}
	return ansiRe.ReplaceAllString(s, "")
}

// eachCluster calls fn with every grapheme cluster of s and its cell width
// until fn returns false.
func eachCluster(s string, fn func(cluster string, width int) bool) {
	state := -1
	var cluster string
	for s != "" {
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		if !fn(cluster, runewidth.StringWidth(cluster)) {
			return
		}
	}
}

// VisibleWidth は端末上の表示幅を返す。エスケープシーケンスは幅に数えない。
func VisibleWidth(s string) int {
	width := 0
	eachCluster(StripANSI(s), func(_ string, w int) bool {
		width += w
		return true
	})
	return width
}

// Truncate shortens s to at most w cells. When s is cut, ellipsis is
// appended if it fits. Escape sequences are dropped from a cut string.
func Truncate(s string, w int, ellipsis string) string {
	if w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	budget := w
	if ew := VisibleWidth(ellipsis); ew <= w {
		budget = w - ew
	} else {
		ellipsis = ""
	}
	var b strings.Builder
	used := 0
	eachCluster(StripANSI(s), func(cluster string, cw int) bool {
		if used+cw > budget {
			return false
		}
		b.WriteString(cluster)
		used += cw
		return true
	})
	return b.String() + ellipsis
}

// PadRight は表示幅が w になるよう右側を空白で埋める。
func PadRight(s string, w int) string {
	if pad := w - VisibleWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
