package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DefaultWikipediaURL is the English Wikipedia host.
const DefaultWikipediaURL = "https://en.wikipedia.org"

// matchThreshold is the minimum Jaro-Winkler similarity for preferring a
// later search hit over the first one.
const matchThreshold = 0.8

// Article is a resolved Wikipedia page.
type Article struct {
	Title     string `json:"title"`
	PageID    int64  `json:"page_id"`
	PageURL   string `json:"page_url"`
	HTML      string `json:"html"`
	SearchURL string `json:"search_url"`
}

// Wikipedia looks up album and artist articles.
type Wikipedia struct {
	client  *Client
	baseURL string
}

// NewWikipedia creates a Wikipedia lookup against baseURL.
func NewWikipedia(client *Client, baseURL string) *Wikipedia {
	if baseURL == "" {
		baseURL = DefaultWikipediaURL
	}
	return &Wikipedia{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int64  `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  struct {
			HTML string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
}

// Album finds the article for an album. The search is "<artist> <title>
// album"; hits whose title resembles the album title are preferred.
func (w *Wikipedia) Album(ctx context.Context, artist, title string) (Article, error) {
	query := fmt.Sprintf("%s %s album", artist, title)
	return cached(w.client, "wiki:album:"+artist+"\x00"+title, func() (Article, error) {
		return w.lookup(ctx, query, title)
	})
}

// Artist finds the article for an artist.
func (w *Wikipedia) Artist(ctx context.Context, artist string) (Article, error) {
	return cached(w.client, "wiki:artist:"+artist, func() (Article, error) {
		return w.lookup(ctx, artist, artist)
	})
}

// SearchURL is the manual search page for query.
func (w *Wikipedia) SearchURL(query string) string {
	return w.baseURL + "/wiki/Special:Search?search=" + url.QueryEscape(query)
}

func (w *Wikipedia) lookup(ctx context.Context, query, want string) (Article, error) {
	searchURL := w.SearchURL(query)

	var sr searchResponse
	u := w.baseURL + "/w/api.php?" + url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"format":   {"json"},
	}.Encode()
	if err := w.client.getJSON(ctx, u, &sr); err != nil {
		return Article{}, fmt.Errorf("wikipedia search: %w", err)
	}

	hits := sr.Query.Search
	if len(hits) == 0 {
		return Article{}, &NotFoundError{Service: "wikipedia", Query: query, SearchURL: searchURL}
	}

	titles := make([]string, len(hits))
	for i, h := range hits {
		titles[i] = h.Title
	}
	pick := bestMatch(want, titles, matchThreshold)
	if pick < 0 {
		pick = 0
	}
	hit := hits[pick]

	var pr parseResponse
	u = w.baseURL + "/w/api.php?" + url.Values{
		"action": {"parse"},
		"pageid": {fmt.Sprint(hit.PageID)},
		"prop":   {"text"},
		"format": {"json"},
	}.Encode()
	if err := w.client.getJSON(ctx, u, &pr); err != nil {
		return Article{}, fmt.Errorf("wikipedia parse: %w", err)
	}
	if pr.Parse.Text.HTML == "" {
		return Article{}, &NotFoundError{Service: "wikipedia", Query: query, SearchURL: searchURL}
	}

	title := pr.Parse.Title
	if title == "" {
		title = hit.Title
	}

	return Article{
		Title:     title,
		PageID:    hit.PageID,
		PageURL:   fmt.Sprintf("%s/?curid=%d", w.baseURL, hit.PageID),
		HTML:      w.absolutize(pr.Parse.Text.HTML),
		SearchURL: searchURL,
	}, nil
}

// absolutize rewrites the relative links and protocol-relative images in
// parsed page HTML so they work outside Wikipedia.
func (w *Wikipedia) absolutize(html string) string {
	r := strings.NewReplacer(
		`href="/wiki/`, `href="`+w.baseURL+`/wiki/`,
		`href="./`, `href="`+w.baseURL+`/wiki/`,
		`src="//`, `src="https://`,
	)
	return r.Replace(html)
}
