// Package bootstrap assembles the collection service and its collaborators
// from configuration. Both the web server and the terminal browser start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/recordviewer/internal/config"
	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/JonMunkholm/recordviewer/internal/database"
	"github.com/JonMunkholm/recordviewer/internal/lookup"
	"github.com/JonMunkholm/recordviewer/internal/watch"
)

// App is a wired service plus the resources it owns.
type App struct {
	Service   *core.Service
	Wikipedia *lookup.Wikipedia
	Discogs   *lookup.Discogs
	Exports   *database.ExportStore // nil without a database

	// Files are the local file sources, watched when enabled.
	Files []string

	cfg  *config.Config
	pool *pgxpool.Pool
}

// New connects the optional database, resolves the configured sources and
// builds the service. It does not load the collection.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{cfg: cfg}

	if cfg.Database.Enabled() {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.pool = pool
		app.Exports = database.NewExportStore(pool)
		slog.Info("connected to database", "max_conns", cfg.Database.MaxConns)
	}

	httpClient := &http.Client{Timeout: cfg.Collection.LoadTimeout}
	sources, err := app.sources(httpClient)
	if err != nil {
		app.Close()
		return nil, err
	}

	var fallback core.Source
	if cfg.Collection.FallbackDemo {
		fallback = core.DemoSource()
	}

	loader := core.NewLoader(core.LoaderConfig{
		Sources:     sources,
		Fallback:    fallback,
		Timeout:     cfg.Collection.LoadTimeout,
		MaxParallel: cfg.Collection.MaxParallel,
	})

	if cfg.Upload.Timeout > 0 {
		core.UploadTimeout = cfg.Upload.Timeout
	}
	opts := []core.ServiceOption{
		core.WithUploadLimiter(core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
		core.WithMaxUploadSize(cfg.Upload.MaxFileSize),
	}
	if app.Exports != nil {
		opts = append(opts, core.WithExportSaver(app.Exports))
	}
	app.Service = core.NewService(loader, opts...)

	client := lookup.NewClient(lookup.Options{
		UserAgent:         cfg.Lookup.UserAgent,
		Timeout:           cfg.Lookup.Timeout,
		RequestsPerSecond: cfg.Lookup.RequestsPerSecond,
		CacheTTL:          cfg.Lookup.CacheTTL,
	})
	app.Wikipedia = lookup.NewWikipedia(client, cfg.Lookup.WikipediaURL)
	app.Discogs = lookup.NewDiscogs(client, cfg.Lookup.DiscogsURL, cfg.Lookup.DiscogsToken)

	return app, nil
}

// sources turns the configured source specs into core sources. "db" needs a
// database; the rest goes through core.ParseSourceSpec.
func (a *App) sources(client *http.Client) ([]core.Source, error) {
	var out []core.Source
	for _, spec := range a.cfg.Collection.Sources {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		if spec == "db" {
			if a.Exports == nil {
				return nil, errors.New("collection source \"db\" requires DATABASE_URL")
			}
			out = append(out, database.ExportSource{Store: a.Exports})
			continue
		}

		src := core.ParseSourceSpec(spec, client, a.cfg.Upload.MaxFileSize)
		if fs, ok := src.(core.FileSource); ok {
			a.Files = append(a.Files, fs.Path)
		}
		out = append(out, src)
	}
	return out, nil
}

// Watch reloads the collection whenever a file source changes and passes the
// outcome to after, which may be nil. It blocks until ctx is done. Without
// file sources it returns immediately.
func (a *App) Watch(ctx context.Context, after func(*core.LoadResult, error)) error {
	if len(a.Files) == 0 {
		return nil
	}
	w, err := watch.New(a.Files, a.cfg.Collection.WatchDebounce, func(ctx context.Context, file string) {
		res, err := a.Service.Load(ctx)
		if err != nil {
			slog.Warn("reload after file change failed", "file", file, "error", err)
		}
		if after != nil {
			after(res, err)
		}
	})
	if err != nil {
		return fmt.Errorf("watch collection files: %w", err)
	}
	slog.Info("watching collection files", "files", a.Files)
	w.Run(ctx)
	return nil
}

// Close releases the database pool.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
