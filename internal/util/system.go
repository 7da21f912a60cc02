package util

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SanitizeFolderName makes a string safe to use as a file or folder name on
// most OSes. It removes control chars and replaces common bad chars with '-'.
func SanitizeFolderName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "Unknown"
	}

	badChars := `<>:"/\|?*`
	return strings.Map(func(r rune) rune {
		if r < 32 {
			return -1
		}
		if strings.ContainsRune(badChars, r) {
			return '-'
		}
		return r
	}, name)
}

// TargetDirFor mirrors the remote folder of fileURL below rootURL inside
// baseDir. A file directly in the root, or one outside it, lands in baseDir.
//
//	TargetDirFor("/dl", "https://h/files/", "https://h/files/SNES/USA/a.zip")
//	  == "/dl/SNES/USA"
func TargetDirFor(baseDir, rootURL, fileURL string) string {
	root, err1 := url.Parse(rootURL)
	file, err2 := url.Parse(fileURL)
	if err1 != nil || err2 != nil || root.Host != file.Host {
		return baseDir
	}

	rootPath := strings.TrimRight(root.Path, "/") + "/"
	if !strings.HasPrefix(file.Path, rootPath) {
		return baseDir
	}

	rel := strings.Trim(strings.TrimPrefix(file.Path, rootPath), "/")
	parts := strings.Split(rel, "/")
	if len(parts) < 2 {
		return baseDir
	}

	out := []string{baseDir}
	for _, p := range parts[:len(parts)-1] {
		if p == "" {
			continue
		}
		out = append(out, SanitizeFolderName(p))
	}
	return filepath.Join(out...)
}

// FileNameFromURL returns the decoded, sanitized last path segment of rawURL.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download.bin"
	}
	p := strings.TrimRight(u.Path, "/")
	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" {
		return "download.bin"
	}
	return SanitizeFolderName(name)
}
