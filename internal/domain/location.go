package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a position inside a remote archive: a server base URL plus a
// slash-delimited path below it.
type Location struct {
	BaseURL string
	Path    string
}

// NewLocation returns a normalized Location.
func NewLocation(baseURL, path string) Location {
	return Location{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    normalizePath(path),
	}
}

// ParseLocation splits an absolute listing URL into server base and path.
// The path keeps its percent-encoding.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("invalid url %q: scheme and host required", raw)
	}
	return NewLocation(u.Scheme+"://"+u.Host, u.EscapedPath()), nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// URL returns the listing URL of the location.
func (l Location) URL() string {
	return l.BaseURL + l.Path
}

// Segments returns the non-empty path segments.
func (l Location) Segments() []string {
	var out []string
	for _, s := range strings.Split(l.Path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Into returns the location of the named child directory.
func (l Location) Into(name string) Location {
	return Location{BaseURL: l.BaseURL, Path: l.Path + strings.Trim(name, "/") + "/"}
}

// CanGoUp reports whether Up would move, keeping at least floor segments.
func (l Location) CanGoUp(floor int) bool {
	return len(l.Segments()) > floor
}

// Up returns the parent location. It never climbs above floor segments; at
// the floor the location is returned unchanged.
func (l Location) Up(floor int) Location {
	parts := l.Segments()
	if len(parts) <= floor {
		return l
	}
	parts = parts[:len(parts)-1]
	if len(parts) == 0 {
		return Location{BaseURL: l.BaseURL, Path: "/"}
	}
	return Location{BaseURL: l.BaseURL, Path: "/" + strings.Join(parts, "/") + "/"}
}

// EntryURL returns the download or navigation URL of an entry listed at l.
func (l Location) EntryURL(e DirectoryEntry) string {
	u := l.URL() + e.Name
	if e.IsDir {
		u += "/"
	}
	return u
}

// Resolve turns a command line reference into an absolute URL: absolute URLs
// pass through, "/x" is relative to the server base, anything else is
// relative to the current path.
func (l Location) Resolve(ref string) string {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return l.BaseURL + ref
	default:
		return l.URL() + ref
	}
}
