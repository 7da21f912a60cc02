package util

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		decimals int
		expected string
	}{
		{0, 2, "0 B"},
		{-5, 2, "0 B"},
		{512, 2, "512 B"},
		{1024, 0, "1 KiB"},
		{1572864, 1, "1.5 MiB"},
		{3 << 30, 2, "3.00 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatBytes(tt.bytes, tt.decimals); got != tt.expected {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.bytes, tt.decimals, got, tt.expected)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	n := int64(2048)
	if got := FormatSize(&n); got != "2.0 KiB" {
		t.Errorf("FormatSize(2048) = %q", got)
	}
	if got := FormatSize(nil); got != "-" {
		t.Errorf("FormatSize(nil) = %q, want -", got)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		total    int64
		elapsed  time.Duration
		expected string
	}{
		{"Nothing done", 0, 100, time.Second, "--"},
		{"Unknown total", 10, 0, time.Second, "--"},
		{"Finished", 100, 100, time.Second, "--"},
		{"Half way", 50, 100, 30 * time.Second, "30s"},
		{"Minutes", 25, 100, 2 * time.Minute, "6m"},
		{"Hours", 1, 64, time.Minute, "1h 3m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatETA(tt.current, tt.total, tt.elapsed); got != tt.expected {
				t.Errorf("formatETA() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Nintendo - Game Boy", "Nintendo - Game Boy"},
		{"a/b:c", "a-b-c"},
		{"  ", "Unknown"},
		{"..", "Unknown"},
		{"tab\there", "tabhere"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFolderName(tt.in); got != tt.expected {
				t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestTargetDirFor(t *testing.T) {
	base := filepath.Join("dl")
	root := "https://myrient.erista.me/files/No-Intro/"

	tests := []struct {
		name     string
		fileURL  string
		expected string
	}{
		{"Nested", root + "Nintendo%20-%20Game%20Boy/Tetris.zip", filepath.Join(base, "Nintendo - Game Boy")},
		{"Two levels", root + "A/B/c.bin", filepath.Join(base, "A", "B")},
		{"Directly in root", root + "c.bin", base},
		{"Outside root", "https://myrient.erista.me/files/Redump/x.iso", base},
		{"Other host", "https://example.com/files/No-Intro/A/x.iso", base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetDirFor(base, root, tt.fileURL); got != tt.expected {
				t.Errorf("TargetDirFor(%q) = %q, want %q", tt.fileURL, got, tt.expected)
			}
		})
	}
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://h/files/Tetris%20%28World%29.zip", "Tetris (World).zip"},
		{"https://h/files/dir/", "dir"},
		{"https://h/", "download.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FileNameFromURL(tt.in); got != tt.expected {
				t.Errorf("FileNameFromURL(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestUnzipInPlace(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "game.zip")
	writeZip(t, zipPath, map[string]string{
		"game.gb":         "rom",
		"docs/readme.txt": "hello",
	})

	outDir, count, err := UnzipInPlace(zipPath)
	if err != nil {
		t.Fatalf("UnzipInPlace() error = %v", err)
	}
	if outDir != dir {
		t.Errorf("outDir = %q, want %q", outDir, dir)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if b, err := os.ReadFile(filepath.Join(dir, "docs", "readme.txt")); err != nil || string(b) != "hello" {
		t.Errorf("readme.txt = %q, %v", b, err)
	}
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Errorf("zip not removed: %v", err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}
