package domain

import "net/url"

// DirectoryEntry represents one item in an HTTP directory listing.
type DirectoryEntry struct {
	Name         string // href with one trailing slash removed
	IsDir        bool   // true if the href ended with a slash
	Size         *int64 // bytes, nil when no size annotation was found
	LastModified string // date token as found in the page, empty when none
}

// HasSize reports whether a size annotation was found for the entry.
func (e DirectoryEntry) HasSize() bool {
	return e.Size != nil
}

// DisplayName returns the percent-decoded name. Names that fail to decode are
// returned as-is.
func (e DirectoryEntry) DisplayName() string {
	if s, err := url.PathUnescape(e.Name); err == nil {
		return s
	}
	return e.Name
}

func (e DirectoryEntry) Kind() string {
	if e.IsDir {
		return "dir"
	}
	return "file"
}
