package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UnzipInPlace extracts zipPath into the directory where the zip lives
// (e.g. /roms/SNES/Game.zip -> /roms/SNES/<zip contents>) and deletes the
// .zip afterwards. It returns that directory and the extracted file count.
func UnzipInPlace(zipPath string) (string, int, error) {
	dir := filepath.Dir(zipPath)

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", 0, fmt.Errorf("open zip: %w", err)
	}

	count := 0
	for _, f := range r.File {
		// Zip slip: entries may not escape dir.
		cleanName := filepath.Clean(filepath.FromSlash(f.Name))
		if filepath.IsAbs(cleanName) || cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(filepath.Separator)) {
			continue
		}
		outPath := filepath.Join(dir, cleanName)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				r.Close()
				return "", count, fmt.Errorf("mkdir %s: %w", outPath, err)
			}
			continue
		}

		if err := extractFile(f, outPath); err != nil {
			r.Close()
			return "", count, err
		}
		count++
	}
	r.Close()

	if err := os.Remove(zipPath); err != nil {
		return dir, count, fmt.Errorf("remove zip %s: %w", zipPath, err)
	}
	return dir, count, nil
}

func extractFile(f *zip.File, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(outPath), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}
