package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultDiscogsURL is the Discogs API host.
const DefaultDiscogsURL = "https://api.discogs.com"

// Discography is an artist and their releases as Discogs returns them,
// ordered by year ascending.
type Discography struct {
	ArtistID int64             `json:"artist_id"`
	Name     string            `json:"name"`
	Releases []json.RawMessage `json:"releases"`
	URL      string            `json:"url"`
}

// Discogs looks up artist discographies.
type Discogs struct {
	client  *Client
	baseURL string
	token   string
}

// NewDiscogs creates a Discogs lookup. Without a token every call returns
// ErrDisabled.
func NewDiscogs(client *Client, baseURL, token string) *Discogs {
	if baseURL == "" {
		baseURL = DefaultDiscogsURL
	}
	return &Discogs{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

// Enabled reports whether a token is configured.
func (d *Discogs) Enabled() bool {
	return d.token != ""
}

type artistSearchResponse struct {
	Results []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
}

type releasesResponse struct {
	Releases []json.RawMessage `json:"releases"`
}

// Discography finds artist and returns their releases.
func (d *Discogs) Discography(ctx context.Context, artist string) (Discography, error) {
	if !d.Enabled() {
		return Discography{}, fmt.Errorf("discogs: %w", ErrDisabled)
	}
	return cached(d.client, "discogs:"+artist, func() (Discography, error) {
		return d.discography(ctx, artist)
	})
}

func (d *Discogs) discography(ctx context.Context, artist string) (Discography, error) {
	var sr artistSearchResponse
	u := d.baseURL + "/database/search?" + url.Values{
		"q":     {artist},
		"type":  {"artist"},
		"token": {d.token},
	}.Encode()
	if err := d.client.getJSON(ctx, u, &sr); err != nil {
		return Discography{}, fmt.Errorf("discogs search: %w", err)
	}

	if len(sr.Results) == 0 {
		return Discography{}, &NotFoundError{
			Service:   "discogs",
			Query:     artist,
			SearchURL: "https://www.discogs.com/search/?type=artist&q=" + url.QueryEscape(artist),
		}
	}

	names := make([]string, len(sr.Results))
	for i, r := range sr.Results {
		names[i] = r.Title
	}
	pick := bestMatch(artist, names, matchThreshold)
	if pick < 0 {
		pick = 0
	}
	hit := sr.Results[pick]

	var rr releasesResponse
	u = fmt.Sprintf("%s/artists/%d/releases?", d.baseURL, hit.ID) + url.Values{
		"sort":       {"year"},
		"sort_order": {"asc"},
		"token":      {d.token},
	}.Encode()
	if err := d.client.getJSON(ctx, u, &rr); err != nil {
		return Discography{}, fmt.Errorf("discogs releases: %w", err)
	}

	return Discography{
		ArtistID: hit.ID,
		Name:     hit.Title,
		Releases: rr.Releases,
		URL:      fmt.Sprintf("https://www.discogs.com/artist/%d", hit.ID),
	}, nil
}
