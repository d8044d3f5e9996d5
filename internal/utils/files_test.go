package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "summary.yaml")
	if err := SafeWriteFile(path, []byte("ok")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "ok" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"RCOG_100":           "rcog-100",
		"  Stress > 1000 ":   "stress--1000",
		"Feature Importance": "feature-importance",
		"???":                "output",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripExt(t *testing.T) {
	if got := StripExt("/data/H2_150.csv"); got != "H2_150" {
		t.Fatalf("StripExt = %q", got)
	}
}
