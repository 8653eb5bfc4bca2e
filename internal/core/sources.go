package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source supplies the raw text of a collection export. The parser never
// learns where text came from.
type Source interface {
	// Name identifies the source in logs and load errors.
	Name() string
	// Fetch returns the whole export. Empty content is ErrEmptyFile.
	Fetch(ctx context.Context) (string, error)
}

// FileSource reads an export from the local filesystem.
type FileSource struct {
	Path    string
	MaxSize int64
}

// Name implements Source.
func (f FileSource) Name() string { return "file:" + f.Path }

// Fetch implements Source.
func (f FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return ReadText(file, f.MaxSize)
}

// HTTPSource fetches an export over HTTP(S).
type HTTPSource struct {
	URL     string
	Client  *http.Client
	MaxSize int64
}

// Name implements Source.
func (h HTTPSource) Name() string { return h.URL }

// Fetch implements Source.
func (h HTTPSource) Fetch(ctx context.Context) (string, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return ReadText(resp.Body, h.MaxSize)
}

// StaticSource serves fixed in-memory text. It backs the demo fallback and
// tests.
type StaticSource struct {
	Label string
	Text  string
}

// Name implements Source.
func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Fetch implements Source.
func (s StaticSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(s.Text) == "" {
		return "", ErrEmptyFile
	}
	return s.Text, nil
}

// DemoCollection is a small built-in export used when no configured source
// can be read.
const DemoCollection = `Artist,Title,Released,Label,Format,Catalog#,Collection Media Condition,Collection Sleeve Condition,CollectionFolder,Date Added,Collection Notes
The Beatles,Abbey Road,1969,Apple Records,LP,SO-383,Very Good Plus (VG+),Very Good (VG),Rock,2022-01-15,Classic album
Pink Floyd,Dark Side of the Moon,1973,Harvest,LP,SHVL 804,Near Mint (NM or M-),Very Good Plus (VG+),Rock,2022-02-20,Original pressing
Miles Davis,Kind of Blue,1959,Columbia,LP,CL 1355,Very Good (VG),Good Plus (G+),Jazz,2022-03-10,Mono version`

// DemoSource returns a StaticSource over DemoCollection.
func DemoSource() StaticSource {
	return StaticSource{Label: "demo", Text: DemoCollection}
}

// ParseSourceSpec turns one configured source string into a Source.
// "http://" and "https://" prefixes select HTTPSource, "demo" selects the
// built-in collection, anything else is a file path ("file:" prefix optional).
func ParseSourceSpec(spec string, client *http.Client, maxSize int64) Source {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "http://"), strings.HasPrefix(spec, "https://"):
		return HTTPSource{URL: spec, Client: client, MaxSize: maxSize}
	case spec == "demo":
		return DemoSource()
	default:
		return FileSource{Path: strings.TrimPrefix(spec, "file:"), MaxSize: maxSize}
	}
}
