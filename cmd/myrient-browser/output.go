package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/havokzero/myrient-browser/internal/domain"
	"github.com/havokzero/myrient-browser/internal/util"
)

// jsonEntry is the --json shape of a listing entry.
type jsonEntry struct {
	Name         string `json:"name"`
	IsDirectory  bool   `json:"isDirectory"`
	Size         *int64 `json:"size,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}

func writeJSON(w io.Writer, entries []domain.DirectoryEntry) error {
	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{
			Name:         e.Name,
			IsDirectory:  e.IsDir,
			Size:         e.Size,
			LastModified: e.LastModified,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeListing(w io.Writer, entries []domain.DirectoryEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		name := e.DisplayName()
		size := util.FormatSize(e.Size)
		if e.IsDir {
			name += "/"
			size = ""
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, size, e.LastModified)
	}
	return tw.Flush()
}
