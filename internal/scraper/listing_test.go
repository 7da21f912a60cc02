package scraper

import (
	"reflect"
	"testing"

	"github.com/havokzero/myrient-browser/internal/domain"
)

const myrientPage = `<!DOCTYPE html>
<html><head><title>Index of /files/No-Intro/</title></head>
<body>
<table id="list">
<thead><tr>
<th><a href="?C=N&amp;O=A">File Name</a></th>
<th><a href="?C=S&amp;O=A">File Size</a></th>
<th><a href="?C=M&amp;O=A">Date</a></th>
</tr></thead>
<tbody>
<tr><td class="link"><a href="../">Parent directory/</a></td><td class="size">-</td><td class="date">-</td></tr>
<tr><td class="link"><a href="b/" title="b">b/</a></td><td class="size">-</td><td class="date">03-Feb-2024 10:00</td></tr>
<tr><td class="link"><a href="z.bin" title="z.bin">z.bin</a></td><td class="size">1.5 MiB</td><td class="date">12-Jan-2023 08:30</td></tr>
<tr><td class="link"><a href="A/" title="A">A/</a></td><td class="size">-</td><td class="date">2023-01-12</td></tr>
</tbody>
</table>
<a href="https://myrient.erista.me/">Home</a>
</body></html>`

const nginxPage = `<html><head><title>Index of /pub/</title></head><body>
<h1>Index of /pub/</h1><hr><pre><a href="../">../</a>
<a href="docs/">docs/</a>                                              01-Mar-2024 09:15       -
<a href="image.iso">image.iso</a>                                          02-Mar-2024 10:20     700 MB
<a href="notes.txt">notes.txt</a>                                          2024-03-03          1 KiB
</pre><hr></body></html>`

func size(n int64) *int64 { return &n }

func names(entries []domain.DirectoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func find(entries []domain.DirectoryEntry, name string) (domain.DirectoryEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return domain.DirectoryEntry{}, false
}

func TestParseListingMyrientTable(t *testing.T) {
	got := ParseListing(myrientPage)
	want := []domain.DirectoryEntry{
		{Name: "A", IsDir: true, LastModified: "2023-01-12"},
		{Name: "b", IsDir: true, LastModified: "03-Feb-2024 10:00"},
		{Name: "z.bin", Size: size(1572864), LastModified: "12-Jan-2023 08:30"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseListing() = %+v, want %+v", got, want)
	}
}

func TestParseListingNginxPre(t *testing.T) {
	got := ParseListing(nginxPage)
	want := []domain.DirectoryEntry{
		{Name: "docs", IsDir: true, LastModified: "01-Mar-2024 09:15"},
		{Name: "image.iso", Size: size(700000000), LastModified: "02-Mar-2024 10:20"},
		{Name: "notes.txt", Size: size(1024), LastModified: "2024-03-03"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseListing() = %+v, want %+v", got, want)
	}
}

func TestParseListingSortOrder(t *testing.T) {
	page := `<ul>
<li><a href="z.bin">z.bin</a></li>
<li><a href="b/">b/</a></li>
<li><a href="A/">A/</a></li>
</ul>`
	got := names(ParseListing(page))
	want := []string{"A", "b", "z.bin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestParseListingCollation(t *testing.T) {
	page := `<div>
<a href="zeta">zeta</a>
<a href="éclair.txt">éclair.txt</a>
<a href="Eagle.txt">Eagle.txt</a>
<a href="apple.txt">apple.txt</a>
</div>`
	got := names(ParseListing(page))
	want := []string{"apple.txt", "Eagle.txt", "éclair.txt", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestParseListingSizes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int64
	}{
		{"Binary mebibytes", "1.5 MiB", size(1572864)},
		{"Decimal kilobytes", "2 KB", size(2000)},
		{"Plain bytes", "512 B", size(512)},
		{"Zero bytes", "0 B", size(0)},
		{"Lowercase unit", "3 mb", size(3000000)},
		{"No space", "4GiB", size(4 << 30)},
		{"Terabytes", "1 TB", size(1000000000000)},
		{"Rounded", "1.1 KB", size(1100)},
		{"No unit", "1234", nil},
		{"Dash", "-", nil},
		{"Number before a word starting with B", "Disc 1 Bonus", size(1)},
		{"Followed by a description column", "1.5 MiB</td><td>Final release", size(1572864)},
		{"Followed by a MIME type column", "700 MB</td><td>application/zip", size(700000000)},
		{"Non-breaking space", "1.5&nbsp;MiB", size(1572864)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<table><tr><td><a href="file.dat">file.dat</a></td><td>` + tt.text + `</td></tr></table>`
			entries := ParseListing(page)
			if len(entries) != 1 {
				t.Fatalf("got %d entries, want 1", len(entries))
			}
			if !reflect.DeepEqual(entries[0].Size, tt.want) {
				t.Errorf("Size = %v, want %v", deref(entries[0].Size), deref(tt.want))
			}
		})
	}
}

func deref(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestParseListingDirectoryNeverHasSize(t *testing.T) {
	page := `<table><tr><td><a href="roms/">roms/</a></td><td>5 GB</td><td>2024-01-01</td></tr></table>`
	entries := ParseListing(page)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if !e.IsDir || e.HasSize() {
		t.Errorf("entry = %+v, want directory without size", e)
	}
	if e.LastModified != "2024-01-01" {
		t.Errorf("LastModified = %q, want %q", e.LastModified, "2024-01-01")
	}
}

func TestParseListingDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"Autoindex timestamp", "12-Jan-2023 08:30", "12-Jan-2023 08:30"},
		{"ISO date", "2023-01-12 08:30", "2023-01-12"},
		{"Slashed short year", "3/4/21", "3/4/21"},
		{"Dashed long year", "03-04-2021", "03-04-2021"},
		{"Non-breaking space", "12-Jan-2023&nbsp;08:30", "12-Jan-2023\u00a008:30"},
		{"None", "yesterday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<div><a href="a.txt">a.txt</a> ` + tt.text + `</div>`
			entries := ParseListing(page)
			if len(entries) != 1 {
				t.Fatalf("got %d entries, want 1", len(entries))
			}
			if entries[0].LastModified != tt.want {
				t.Errorf("LastModified = %q, want %q", entries[0].LastModified, tt.want)
			}
		})
	}
}

func TestParseListingExclusions(t *testing.T) {
	tests := []struct {
		name string
		href string
	}{
		{"Parent", "../"},
		{"Root", "/"},
		{"Absolute http", "http://example.com/x"},
		{"Absolute https", "https://example.com/x/"},
		{"Empty", ""},
		{"Current directory", "./"},
		{"Dot", "."},
		{"Dot dot", ".."},
		{"Sort link", "?C=M;O=D"},
		{"Fragment", "#top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<div><a href="` + tt.href + `">link</a></div>`
			if got := ParseListing(page); len(got) != 0 {
				t.Errorf("ParseListing(href=%q) = %+v, want no entries", tt.href, got)
			}
		})
	}
}

func TestParseListingAnchorWithoutHref(t *testing.T) {
	if got := ParseListing(`<a name="top">top</a>`); len(got) != 0 {
		t.Errorf("got %+v, want no entries", got)
	}
}

func TestParseListingEmpty(t *testing.T) {
	for _, page := range []string{"", "<html><body><p>Nothing here</p></body></html>"} {
		got := ParseListing(page)
		if got == nil || len(got) != 0 {
			t.Errorf("ParseListing(%q) = %#v, want empty slice", page, got)
		}
	}
}

func TestParseListingMalformed(t *testing.T) {
	page := `<table><tr><td><a href="ok.txt">ok.txt</td><td>10 B</tr><tr><td><a href="next/">next/</b></table></div></span>`
	entries := ParseListing(page)

	ok, found := find(entries, "ok.txt")
	if !found {
		t.Fatalf("ok.txt missing from %+v", entries)
	}
	if !reflect.DeepEqual(ok.Size, size(10)) {
		t.Errorf("ok.txt size = %v, want 10", deref(ok.Size))
	}
	if _, found := find(entries, "next"); !found {
		t.Errorf("next/ missing from %+v", entries)
	}
}

func TestParseListingIdempotent(t *testing.T) {
	first := ParseListing(myrientPage)
	second := ParseListing(myrientPage)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parses differ:\n%+v\n%+v", first, second)
	}
	if len(first) > 2 && first[2].Size == second[2].Size {
		t.Error("parses share size storage")
	}
}

func TestUnitMultiplier(t *testing.T) {
	tests := []struct {
		unit string
		want float64
	}{
		{"B", 1},
		{"kb", 1000},
		{"MB", 1000 * 1000},
		{"KiB", 1024},
		{"gib", 1024 * 1024 * 1024},
		{"TiB", 1024 * 1024 * 1024 * 1024},
		{"XB", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			if got := unitMultiplier(tt.unit); got != tt.want {
				t.Errorf("unitMultiplier(%q) = %v, want %v", tt.unit, got, tt.want)
			}
		})
	}
}

func TestSortEntriesStable(t *testing.T) {
	entries := []domain.DirectoryEntry{
		{Name: "readme"},
		{Name: "README"},
		{Name: "sub", IsDir: true},
	}
	SortEntries(entries)
	want := []string{"sub", "readme", "README"}
	if got := names(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
