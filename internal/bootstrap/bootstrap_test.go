package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JonMunkholm/recordviewer/internal/config"
	"github.com/JonMunkholm/recordviewer/internal/core"
)

func testConfig(sources ...string) *config.Config {
	return &config.Config{
		Collection: config.CollectionConfig{
			Sources:       sources,
			LoadTimeout:   5 * time.Second,
			MaxParallel:   2,
			WatchDebounce: 20 * time.Millisecond,
		},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 1,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
		},
		Lookup: config.LookupConfig{
			WikipediaURL: "http://127.0.0.1:0",
			DiscogsURL:   "http://127.0.0.1:0",
		},
	}
}

func TestNew_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")
	if err := os.WriteFile(path, []byte("Artist,Title,CollectionFolder\nCan,Tago Mago,Rock\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	missing := filepath.Join(t.TempDir(), "missing.csv")
	app, err := New(context.Background(), testConfig(" ", path, missing))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if len(app.Files) != 2 || app.Files[0] != path || app.Files[1] != missing {
		t.Errorf("Files = %v, want [%s %s]", app.Files, path, missing)
	}
	if app.Discogs.Enabled() {
		t.Error("Discogs enabled without a token")
	}
	if app.Exports != nil {
		t.Error("Exports set without a database")
	}

	res, err := app.Service.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Source != "file:"+path {
		t.Errorf("Source = %q", res.Source)
	}
	if got := app.Service.Artists(); len(got) != 1 || got[0] != "Can" {
		t.Errorf("Artists() = %v", got)
	}
}

func TestNew_DBSourceNeedsDatabase(t *testing.T) {
	if _, err := New(context.Background(), testConfig("db")); err == nil {
		t.Fatal("New() with db source and no database should fail")
	}
}

func TestNew_FallbackDemo(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.csv"))
	cfg.Collection.FallbackDemo = true

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := app.Service.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Source != core.DemoSource().Name() {
		t.Errorf("Source = %q, want demo", res.Source)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")
	if err := os.WriteFile(path, []byte("Artist,Title\nCan,Tago Mago\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, err := New(context.Background(), testConfig(path))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.Service.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Watch(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("Artist,Title\nCan,Tago Mago\nNeu!,Neu!\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(app.Service.Artists()) == 2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("Artists() after change = %v, want 2 artists", app.Service.Artists())
}

func TestWatch_NoFiles(t *testing.T) {
	app, err := New(context.Background(), testConfig("demo"))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Watch(context.Background(), nil); err != nil {
		t.Errorf("Watch() without files = %v", err)
	}
}
