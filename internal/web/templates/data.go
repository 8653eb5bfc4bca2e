// Package templates renders the HTML pages of the collection browser. The
// components live in .templ files; run `templ generate` after editing them.
package templates

import (
	"fmt"
	"net/url"

	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/lookup"
)

// Folder is one entry of the folder filter.
type Folder struct {
	Name     string
	Count    int
	Selected bool
}

// Next is the form value that toggles the folder.
func (f Folder) Next() string {
	if f.Selected {
		return "false"
	}
	return "true"
}

// BrowseData feeds the index page and its HTMX partial.
type BrowseData struct {
	Folders []Folder
	Artists []string
	Stats   core.Stats
	Source  string
	Loaded  bool
}

// NewBrowseData joins the folder facet with the active selection.
func NewBrowseData(folders []core.FolderCount, sel core.Selection, artists []string, stats core.Stats, source string) BrowseData {
	data := BrowseData{
		Folders: make([]Folder, len(folders)),
		Artists: artists,
		Stats:   stats,
		Source:  source,
		Loaded:  source != "",
	}
	for i, f := range folders {
		data.Folders[i] = Folder{
			Name:     f.Folder,
			Count:    f.Count,
			Selected: !sel.IsSet() || sel.Contains(f.Folder),
		}
	}
	return data
}

// ArtistData feeds the album list page.
type ArtistData struct {
	Artist string
	Albums []core.Record
}

// AlbumData feeds the album details page.
type AlbumData struct {
	Artist string
	Header core.Header
	Record core.Record

	// Article is nil when the lookup failed or is disabled.
	Article *lookup.Article
	// LookupMessage explains a failed lookup; SearchURL lets the user search by hand.
	LookupMessage string
	SearchURL     string
}

// YearLabel is the release year shown next to an album.
func YearLabel(r core.Record) string {
	if year := r.Released(); year != "" {
		return year
	}
	return "Unknown Year"
}

// columns lists the header in file order, skipping duplicates and empty
// values.
func columns(h core.Header, r core.Record) []string {
	seen := make(map[string]bool, len(h))
	out := make([]string, 0, len(h))
	for _, col := range h {
		if seen[col] || r.Get(col) == "" {
			continue
		}
		seen[col] = true
		out = append(out, col)
	}
	return out
}

// ArtistPath is the page URL of an artist.
func ArtistPath(artist string) string {
	return "/artists/" + url.PathEscape(artist)
}

// AlbumPath is the page URL of the index-th album of an artist.
func AlbumPath(artist string, index int) string {
	return fmt.Sprintf("%s/albums/%d", ArtistPath(artist), index)
}

// FolderPath is the API URL that toggles a folder.
func FolderPath(folder string) string {
	return "/api/folders/" + url.PathEscape(folder)
}
