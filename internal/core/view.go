package core

import (
	"fmt"
	"sort"
)

// VisibleRecords returns the records that pass the store's folder filter.
func VisibleRecords(s *Store) []Record {
	records, sel := s.Snapshot()
	return FilterRecords(records, &sel)
}

// FilterRecords applies a folder selection to records, keeping input order.
// An unset selection returns records unchanged; a set but empty selection
// returns an empty slice.
func FilterRecords(records []Record, sel *Selection) []Record {
	if !sel.IsSet() {
		return records
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if sel.Contains(r.Folder()) {
			out = append(out, r)
		}
	}
	return out
}

// UniqueArtists returns the distinct Artist values of records sorted ascending.
func UniqueArtists(records []Record) []string {
	seen := make(map[string]struct{}, len(records))
	artists := make([]string, 0)
	for _, r := range records {
		a := r.Artist()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		artists = append(artists, a)
	}
	sort.Strings(artists)
	return artists
}

// AlbumsForArtist returns the records whose Artist equals artist exactly,
// ordered by release year. Records without a usable year sort last; equal
// years keep their input order.
func AlbumsForArtist(records []Record, artist string) []Record {
	albums := make([]Record, 0)
	for _, r := range records {
		if r.Artist() == artist {
			albums = append(albums, r)
		}
	}

	sort.SliceStable(albums, func(i, j int) bool {
		return albums[i].Year() < albums[j].Year()
	})
	return albums
}

// Stats summarises the current view for status lines.
type Stats struct {
	Artists  int  `json:"artists"`
	Visible  int  `json:"visible"`
	Total    int  `json:"total"`
	Filtered bool `json:"filtered"`
}

// ViewStats computes Stats for a set of visible records.
func ViewStats(visible []Record, total int, sel *Selection) Stats {
	return Stats{
		Artists:  len(UniqueArtists(visible)),
		Visible:  len(visible),
		Total:    total,
		Filtered: sel.IsSet() && len(sel.Folders()) > 0,
	}
}

// String formats the status line shown above the artist list.
func (s Stats) String() string {
	text := fmt.Sprintf("Found %d artists, %d total records", s.Artists, s.Visible)
	if s.Filtered {
		text += fmt.Sprintf(" (filtered from %d)", s.Total)
	}
	return text
}
