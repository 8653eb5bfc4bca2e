package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/lookup"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestNewBrowseData(t *testing.T) {
	folders := []core.FolderCount{{Folder: "Jazz", Count: 1}, {Folder: "Rock", Count: 2}}

	tests := []struct {
		name string
		sel  func() core.Selection
		want map[string]bool
	}{
		{
			name: "unset selection shows every folder as selected",
			sel:  func() core.Selection { return core.Selection{} },
			want: map[string]bool{"Jazz": true, "Rock": true},
		},
		{
			name: "set selection marks only its folders",
			sel: func() core.Selection {
				var s core.Selection
				s.Reset([]string{"Rock"})
				return s
			},
			want: map[string]bool{"Jazz": false, "Rock": true},
		},
		{
			name: "cleared selection marks nothing",
			sel: func() core.Selection {
				var s core.Selection
				s.Clear()
				return s
			},
			want: map[string]bool{"Jazz": false, "Rock": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := NewBrowseData(folders, tt.sel(), nil, core.Stats{}, "fixture")
			if !data.Loaded {
				t.Error("Loaded = false with a source")
			}
			if len(data.Folders) != 2 {
				t.Fatalf("Folders = %v", data.Folders)
			}
			for _, f := range data.Folders {
				if f.Selected != tt.want[f.Name] {
					t.Errorf("%s selected = %v, want %v", f.Name, f.Selected, tt.want[f.Name])
				}
			}
		})
	}
}

func TestBrowser(t *testing.T) {
	var sel core.Selection
	sel.Reset([]string{"Rock"})
	data := NewBrowseData(
		[]core.FolderCount{{Folder: "Jazz", Count: 1}, {Folder: "Rock", Count: 2}},
		sel,
		[]string{"<Script> Band", "AC/DC"},
		core.Stats{Artists: 2, Visible: 2, Total: 3, Filtered: true},
		"fixture",
	)
	body := render(t, Browser(data))

	if !strings.HasPrefix(body, `<main id="browser">`) {
		t.Errorf("partial does not start with the swap target: %q", body)
	}
	for _, want := range []string{
		`value="false"> <label><input type="checkbox" onchange="this.form.requestSubmit()" checked> Rock <span class="muted">(2)</span>`,
		`value="true"> <label><input type="checkbox" onchange="this.form.requestSubmit()"> Jazz <span class="muted">(1)</span>`,
		`hx-post="/api/folders/Rock"`,
		`action="/api/folders/clear"`,
		`href="/artists/AC%2FDC"`,
		"&lt;Script&gt; Band",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "<Script>") {
		t.Error("artist name was not escaped")
	}
	if strings.Contains(body, "No collection loaded yet.") {
		t.Error("loaded collection reported as missing")
	}
}

func TestBrowser_Empty(t *testing.T) {
	body := render(t, Browser(BrowseData{}))

	for _, want := range []string{"No collection folders found", "No collection loaded yet."} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestIndex_WrapsLayout(t *testing.T) {
	body := render(t, Index(BrowseData{}))

	if !strings.HasPrefix(body, "<!doctype html>") {
		t.Errorf("missing doctype: %.40q", body)
	}
	if !strings.Contains(body, "<title>Record Collection</title>") {
		t.Error("missing title")
	}
	if !strings.Contains(body, `</header><main id="browser">`) {
		t.Error("browser not rendered inside the layout")
	}
}

func TestArtist(t *testing.T) {
	tests := []struct {
		name   string
		data   ArtistData
		want   []string
		reject []string
	}{
		{
			name: "albums with and without a year",
			data: ArtistData{
				Artist: "AC/DC",
				Albums: []core.Record{
					{core.ColTitle: "Highway to Hell", core.ColReleased: "1979"},
					{core.ColTitle: "Live & Loud"},
				},
			},
			want: []string{
				`<a href="/artists/AC%2FDC/albums/0">Highway to Hell</a> <span class="muted">1979</span>`,
				`<a href="/artists/AC%2FDC/albums/1">Live &amp; Loud</a> <span class="muted">Unknown Year</span>`,
			},
			reject: []string{"No albums found"},
		},
		{
			name:   "no albums",
			data:   ArtistData{Artist: "Nobody"},
			want:   []string{"<h2>Nobody</h2>", "No albums found for this artist."},
			reject: []string{"<ul>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, Artist(tt.data))
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, reject := range tt.reject {
				if strings.Contains(body, reject) {
					t.Errorf("body contains %q", reject)
				}
			}
		})
	}
}

func TestAlbum(t *testing.T) {
	record := core.Record{
		core.ColArtist:   "Miles Davis",
		core.ColTitle:    "Kind of Blue",
		core.ColReleased: "1959",
		core.ColLabel:    "",
	}
	header := core.Header{core.ColArtist, core.ColTitle, core.ColLabel, core.ColReleased, core.ColTitle}

	tests := []struct {
		name   string
		data   AlbumData
		want   []string
		reject []string
	}{
		{
			name: "article",
			data: AlbumData{
				Artist: "Miles Davis",
				Header: header,
				Record: record,
				Article: &lookup.Article{
					Title:   "Kind of Blue",
					PageURL: "https://en.wikipedia.org/?curid=7",
					HTML:    "<p>Modal jazz</p>",
				},
			},
			want: []string{
				`<a href="/artists/Miles%20Davis">&larr; Miles Davis</a>`,
				`<tr><td class="muted">Released</td><td>1959</td></tr>`,
				"<h3>Kind of Blue</h3><p>Modal jazz</p>",
				`href="https://en.wikipedia.org/?curid=7"`,
			},
			reject: []string{">Label<", "Search on Wikipedia"},
		},
		{
			name: "lookup failed with a search link",
			data: AlbumData{
				Artist:        "Miles Davis",
				Header:        header,
				Record:        record,
				LookupMessage: "No Wikipedia article found",
				SearchURL:     "https://en.wikipedia.org/wiki/Special:Search?search=Kind+of+Blue",
			},
			want: []string{
				`<p class="muted">No Wikipedia article found</p>`,
				"Special:Search",
				"Search on Wikipedia",
			},
			reject: []string{"View full article"},
		},
		{
			name: "unsafe search URL is neutralised",
			data: AlbumData{
				Artist:        "Miles Davis",
				Header:        header,
				Record:        record,
				LookupMessage: "No Wikipedia article found",
				SearchURL:     "javascript:alert(1)",
			},
			want:   []string{string(templ.FailedSanitizationURL)},
			reject: []string{"javascript:"},
		},
		{
			name:   "lookup disabled",
			data:   AlbumData{Artist: "Miles Davis", Header: header, Record: record},
			want:   []string{`<div class="wiki"></div>`},
			reject: []string{"Wikipedia"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, Album(tt.data))
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, reject := range tt.reject {
				if strings.Contains(body, reject) {
					t.Errorf("body contains %q", reject)
				}
			}
			if n := strings.Count(body, `<td class="muted">Title</td>`); n != 1 {
				t.Errorf("Title row rendered %d times", n)
			}
		})
	}
}

func TestErrorAlert(t *testing.T) {
	tests := []struct {
		name    string
		message string
		action  string
		want    string
	}{
		{
			name:    "with action",
			message: "Upload failed",
			action:  "Try again.",
			want:    `<div class="alert" role="alert"><strong>Upload failed</strong> Try again. <span class="muted">(UPL001)</span></div>`,
		},
		{
			name:    "without action",
			message: "Upload failed",
			want:    `<div class="alert" role="alert"><strong>Upload failed</strong> <span class="muted">(UPL001)</span></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, ErrorAlert(tt.message, tt.action, "UPL001")); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}
