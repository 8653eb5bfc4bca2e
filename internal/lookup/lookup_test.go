package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient() *Client {
	return NewClient(Options{RequestsPerSecond: 1000, UserAgent: "test-agent"})
}

func wikiServer(t *testing.T, hits string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q", got)
		}
		q := r.URL.Query()
		switch q.Get("action") {
		case "query":
			fmt.Fprintf(w, `{"query":{"search":[%s]}}`, hits)
		case "parse":
			fmt.Fprintf(w, `{"parse":{"title":"Page %s","text":{"*":"<a href=\"/wiki/Jazz\">Jazz</a><img src=\"//upload.example/x.png\">"}}}`,
				q.Get("pageid"))
		default:
			http.Error(w, "bad action", http.StatusBadRequest)
		}
	}))
}

func TestWikipedia_Album(t *testing.T) {
	srv := wikiServer(t, `{"title":"Miles Davis","pageid":1},{"title":"Kind of Blue","pageid":2}`, nil)
	defer srv.Close()

	wiki := NewWikipedia(newTestClient(), srv.URL)
	art, err := wiki.Album(context.Background(), "Miles Davis", "Kind of Blue")
	if err != nil {
		t.Fatalf("Album() error: %v", err)
	}

	if art.PageID != 2 {
		t.Errorf("PageID = %d, want the hit matching the album title", art.PageID)
	}
	if art.Title != "Page 2" {
		t.Errorf("Title = %q", art.Title)
	}
	if art.PageURL != srv.URL+"/?curid=2" {
		t.Errorf("PageURL = %q", art.PageURL)
	}
	if !strings.Contains(art.HTML, `href="`+srv.URL+`/wiki/Jazz"`) {
		t.Errorf("relative link not rewritten: %s", art.HTML)
	}
	if !strings.Contains(art.HTML, `src="https://upload.example/x.png"`) {
		t.Errorf("protocol-relative image not rewritten: %s", art.HTML)
	}
	if !strings.Contains(art.SearchURL, "Special:Search?search=Miles+Davis+Kind+of+Blue+album") {
		t.Errorf("SearchURL = %q", art.SearchURL)
	}
}

func TestWikipedia_FirstHitWhenNothingResembles(t *testing.T) {
	srv := wikiServer(t, `{"title":"Zzzz","pageid":7},{"title":"Qqqq","pageid":8}`, nil)
	defer srv.Close()

	art, err := NewWikipedia(newTestClient(), srv.URL).Artist(context.Background(), "Pink Floyd")
	if err != nil {
		t.Fatalf("Artist() error: %v", err)
	}
	if art.PageID != 7 {
		t.Errorf("PageID = %d, want first hit", art.PageID)
	}
}

func TestWikipedia_NotFound(t *testing.T) {
	srv := wikiServer(t, "", nil)
	defer srv.Close()

	_, err := NewWikipedia(newTestClient(), srv.URL).Artist(context.Background(), "Nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Artist() error = %v, want ErrNotFound", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || !strings.Contains(nf.SearchURL, "search=Nobody") {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestWikipedia_Cached(t *testing.T) {
	var calls atomic.Int32
	srv := wikiServer(t, `{"title":"Abbey Road","pageid":3}`, &calls)
	defer srv.Close()

	wiki := NewWikipedia(newTestClient(), srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := wiki.Album(context.Background(), "The Beatles", "Abbey Road"); err != nil {
			t.Fatalf("Album() error: %v", err)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2 (search + parse once)", n)
	}
}

func TestWikipedia_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewWikipedia(newTestClient(), srv.URL).Artist(context.Background(), "X")
	if err == nil || !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("Artist() error = %v, want HTTP 503", err)
	}
}

func TestDiscogs_Discography(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/database/search":
			fmt.Fprint(w, `{"results":[{"id":10,"title":"Miles Davis Quintet"},{"id":11,"title":"Miles Davis"}]}`)
		case r.URL.Path == "/artists/11/releases":
			if r.URL.Query().Get("sort") != "year" || r.URL.Query().Get("sort_order") != "asc" {
				t.Errorf("releases query = %v", r.URL.Query())
			}
			fmt.Fprint(w, `{"releases":[{"id":1,"title":"Birth of the Cool","year":1957},{"id":2,"title":"Kind of Blue","year":1959}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDiscogs(newTestClient(), srv.URL, "tok")
	got, err := d.Discography(context.Background(), "Miles Davis")
	if err != nil {
		t.Fatalf("Discography() error: %v", err)
	}

	if got.ArtistID != 11 || got.Name != "Miles Davis" {
		t.Errorf("artist = %d %q, want the exact-name hit", got.ArtistID, got.Name)
	}
	if len(got.Releases) != 2 || !strings.Contains(string(got.Releases[1]), "Kind of Blue") {
		t.Errorf("Releases = %s", got.Releases)
	}
	if got.URL != "https://www.discogs.com/artist/11" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestDiscogs_Disabled(t *testing.T) {
	d := NewDiscogs(newTestClient(), "", "")
	if d.Enabled() {
		t.Error("Enabled() should be false without a token")
	}
	if _, err := d.Discography(context.Background(), "X"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Discography() error = %v, want ErrDisabled", err)
	}
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		cands []string
		want  int
	}{
		{"exact later hit", "Kind of Blue", []string{"Miles Davis", "Kind of Blue"}, 1},
		{"qualifier ignored", "Abbey Road", []string{"Abbey Road (album)", "Abbey Road Studios"}, 0},
		{"case insensitive", "pink floyd", []string{"Pink Floyd"}, 0},
		{"nothing close", "Kind of Blue", []string{"Zzzz"}, -1},
		{"no candidates", "x", nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestMatch(tt.query, tt.cands, matchThreshold); got != tt.want {
				t.Errorf("bestMatch() = %d, want %d", got, tt.want)
			}
		})
	}
}
