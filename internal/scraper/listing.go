package scraper

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/havokzero/myrient-browser/internal/domain"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	// Cell text is joined without separators, so nothing may be required
	// after the unit. &nbsp; decodes to U+00A0, which \s does not cover.
	sizePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[\s\x{00A0}]*(B|KB|MB|GB|TB|KiB|MiB|GiB|TiB)`)

	// Alternatives are tried in order at each position, so a full
	// "12-Jan-2023 08:30" wins over the numeric forms it contains.
	datePattern = regexp.MustCompile(`\d{1,2}-\w{3}-\d{4}[\s\x{00A0}]+\d{2}:\d{2}|\d{4}-\d{2}-\d{2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
)

var unitMultipliers = map[string]float64{
	"B":   1,
	"KB":  1e3,
	"MB":  1e6,
	"GB":  1e9,
	"TB":  1e12,
	"KIB": 1 << 10,
	"MIB": 1 << 20,
	"GIB": 1 << 30,
	"TIB": 1 << 40,
}

// ParseListing extracts directory entries from an autoindex HTML page.
//
// It never fails: markup the HTML5 tree builder cannot make sense of simply
// yields no entries. Directories come first, then files, each group ordered
// by case-insensitive collation.
func ParseListing(page string) []domain.DirectoryEntry {
	entries := []domain.DirectoryEntry{}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return entries
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if e, ok := entryFromAnchor(n); ok {
				entries = append(entries, e)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	SortEntries(entries)
	return entries
}

func entryFromAnchor(a *html.Node) (domain.DirectoryEntry, bool) {
	href, ok := attr(a, "href")
	if !ok || skipHref(href) {
		return domain.DirectoryEntry{}, false
	}

	isDir := strings.HasSuffix(href, "/")
	name := strings.TrimSuffix(href, "/")
	if name == "" || name == "." || name == ".." {
		return domain.DirectoryEntry{}, false
	}

	e := domain.DirectoryEntry{Name: name, IsDir: isDir}

	text := contextText(a)
	if !isDir {
		e.Size = parseSize(text)
	}
	e.LastModified = datePattern.FindString(text)

	return e, true
}

// skipHref reports links that are not children of the listed directory:
// parent and root links, absolute URLs, and the query or fragment links
// autoindex pages use for column sorting.
func skipHref(href string) bool {
	switch {
	case href == "", href == "../", href == "/":
		return true
	case strings.HasPrefix(href, "http"):
		return true
	case strings.HasPrefix(href, "?"), strings.HasPrefix(href, "#"):
		return true
	}
	return false
}

// contextText returns the text of the anchor's table row, or of its parent
// element when it is not inside a row. Inside a <pre> listing every link
// shares the parent, so the row is the anchor plus the text up to the next
// link. This deliberately narrows the parent rule: with the whole <pre> as
// context every entry would take the first row's size and date.
func contextText(a *html.Node) string {
	for n := a; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			return nodeText(n)
		}
	}
	p := a.Parent
	if p == nil || p.Type != html.ElementNode {
		return ""
	}
	if p.DataAtom == atom.Pre {
		return preLineText(a)
	}
	return nodeText(p)
}

func preLineText(a *html.Node) string {
	var b strings.Builder
	b.WriteString(nodeText(a))
	for n := a.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			break
		}
		b.WriteString(nodeText(n))
	}
	return b.String()
}

// parseSize returns the byte count of the first size annotation in text.
func parseSize(text string) *int64 {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	size := toBytes(n * unitMultiplier(m[2]))
	return &size
}

// unitMultiplier maps a size unit to bytes. Unknown units count as bytes.
func unitMultiplier(unit string) float64 {
	if m, ok := unitMultipliers[strings.ToUpper(unit)]; ok {
		return m
	}
	return 1
}

func toBytes(v float64) int64 {
	v = math.Round(v)
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v < 0 {
		return 0
	}
	return int64(v)
}

// SortEntries orders entries in place: directories before files, then by
// case-insensitive, locale-aware name. Equal keys keep their input order.
func SortEntries(entries []domain.DirectoryEntry) {
	// A collator keeps scratch buffers, so each call gets its own.
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return c.CompareString(a.Name, b.Name) < 0
	})
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// nodeText returns all concatenated text nodes under n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}
