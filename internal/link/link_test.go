package link

import (
	"strings"
	"testing"
)

func TestURLFileUsesLineFragment(t *testing.T) {
	got, err := URL("file", "/repo/docs/read me.md", 10)
	if err != nil {
		t.Fatalf("URL error: %v", err)
	}
	want := "file:///repo/docs/read%20me.md#L10"
	if got != want {
		t.Fatalf("file URL mismatch: got=%s want=%s", got, want)
	}
}

func TestURLEditorSchemes(t *testing.T) {
	cases := map[string]string{
		"vscode": "vscode://file/repo/main.go:42",
		"CURSOR": "cursor://file/repo/main.go:42",
		"idea":   "idea://open?file=%2Frepo%2Fmain.go&line=42",
		"subl":   "subl://open?line=42&url=file%3A%2F%2F%2Frepo%2Fmain.go",
	}
	for scheme, want := range cases {
		got, err := URL(scheme, "/repo/main.go", 42)
		if err != nil {
			t.Fatalf("URL(%s) error: %v", scheme, err)
		}
		if got != want {
			t.Fatalf("URL(%s) mismatch: got=%s want=%s", scheme, got, want)
		}
	}
}

func TestURLRejectsInvalidInput(t *testing.T) {
	if _, err := URL("file", "", 1); err == nil {
		t.Fatal("empty file should be rejected")
	}
	_, err := URL("gopher", "/repo/main.go", 1)
	if err == nil || !strings.Contains(err.Error(), "vscode") {
		t.Fatalf("unknown scheme should list the supported ones: %v", err)
	}
	got, err := URL("vscode", "/repo/main.go", 0)
	if err != nil || got != "vscode://file/repo/main.go" {
		t.Fatalf("line 0 should omit the suffix: %s %v", got, err)
	}
}

func TestEditorCommand(t *testing.T) {
	cases := []struct {
		editor string
		name   string
		args   string
	}{
		{"vim", "vim", "+7 /r/a.go"},
		{"/usr/local/bin/nvim -p", "/usr/local/bin/nvim", "-p +7 /r/a.go"},
		{"code --wait", "code", "--wait --goto /r/a.go:7"},
		{"goland", "goland", "--line 7 /r/a.go"},
		{"hx", "hx", "/r/a.go:7"},
		{"ed", "ed", "/r/a.go"},
	}
	for _, tc := range cases {
		name, args, err := EditorCommand(tc.editor, "/r/a.go", 7)
		if err != nil {
			t.Fatalf("EditorCommand(%q) error: %v", tc.editor, err)
		}
		if name != tc.name || strings.Join(args, " ") != tc.args {
			t.Fatalf("EditorCommand(%q) = %s %q, want %s %q", tc.editor, name, args, tc.name, tc.args)
		}
	}
	if _, _, err := EditorCommand("  ", "/r/a.go", 1); err == nil {
		t.Fatal("blank editor should be rejected")
	}
}

func TestLocation(t *testing.T) {
	if got := Location("a.go", 3); got != "a.go:3" {
		t.Fatalf("Location mismatch: %s", got)
	}
	if got := Location("a.go", 0); got != "a.go" {
		t.Fatalf("Location without line mismatch: %s", got)
	}
}
