package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"screen.png", "screen.png"},
		{"../../etc/passwd", "passwd"},
		{"shot<1>:final?.png", "shot_1___final_.png"},
		{"a|b*c.jpg", "a_b_c.jpg"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDeduplicateFilename(t *testing.T) {
	dir := t.TempDir()

	if got := DeduplicateFilename(dir, "shot.png"); got != "shot.png" {
		t.Errorf("got %q, want shot.png", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "shot.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := DeduplicateFilename(dir, "shot.png"); got != "shot 2.png" {
		t.Errorf("got %q, want %q", got, "shot 2.png")
	}

	if err := os.WriteFile(filepath.Join(dir, "shot 2.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := DeduplicateFilename(dir, "shot.png"); got != "shot 3.png" {
		t.Errorf("got %q, want %q", got, "shot 3.png")
	}
}

func TestIsScreenshotFile(t *testing.T) {
	yes := []string{"a.png", "b.JPG", "c.heic", "d.webp"}
	no := []string{"notes.txt", ".DS_Store", "archive.zip", "noext"}

	for _, f := range yes {
		if !IsScreenshotFile(f) {
			t.Errorf("IsScreenshotFile(%q) = false, want true", f)
		}
	}
	for _, f := range no {
		if IsScreenshotFile(f) {
			t.Errorf("IsScreenshotFile(%q) = true, want false", f)
		}
	}
}
