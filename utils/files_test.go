package utils

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindImagesSortedAndRecursive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.PNG", "sub/b.png", "notes.txt", "sub/z.jpg", "png"} {
		touch(t, filepath.Join(dir, name))
	}

	got, err := FindImages(dir)
	if err != nil {
		t.Fatalf("FindImages: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "c.png"),
		filepath.Join(dir, "sub", "b.png"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, p := range got {
		if !filepath.IsAbs(p) {
			t.Errorf("%s is not absolute", p)
		}
	}

	got, err = FindImages(dir, "jpg", ".png")
	if err != nil {
		t.Fatalf("FindImages: %v", err)
	}
	if len(got) != 4 || got[3] != filepath.Join(dir, "sub", "z.jpg") {
		t.Errorf("with jpg: %v", got)
	}
}

func TestFindImagesErrors(t *testing.T) {
	if _, err := FindImages(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
	file := filepath.Join(t.TempDir(), "x.png")
	touch(t, file)
	if _, err := FindImages(file); err == nil {
		t.Error("expected error for a file path")
	}
}

func TestFindImagesSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	touch(t, filepath.Join(frames, "b.png"))
	touch(t, filepath.Join(frames, "a.png"))
	link := filepath.Join(dir, "latest")
	if err := os.Symlink(frames, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got, err := FindImages(link)
	if err != nil {
		t.Fatalf("FindImages: %v", err)
	}
	want := []string{filepath.Join(link, "a.png"), filepath.Join(link, "b.png")}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
