package ui

import (
	"github.com/havokzero/myrient-browser/internal/domain"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// appIcon is the application and window icon.
func appIcon() fyne.Resource {
	return theme.FolderOpenIcon()
}

// entryIcon picks the list icon for an entry.
func entryIcon(e domain.DirectoryEntry) fyne.Resource {
	if e.IsDir {
		return theme.FolderIcon()
	}
	return theme.FileIcon()
}
