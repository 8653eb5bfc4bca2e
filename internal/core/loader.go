package core

// loader.go fetches the collection from a list of candidate sources.
//
// All candidates are fetched concurrently. The first one that parses to at
// least one record wins; the remaining fetches are cancelled and anything
// that completes afterwards is discarded, so a slow stale source can never
// overwrite a fresher one. Concurrent Load calls share a single in-flight
// load. The fallback source is only consulted when every candidate failed.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a whole Load call.
const DefaultLoadTimeout = 30 * time.Second

// DefaultMaxParallel is how many candidate sources are fetched at once.
const DefaultMaxParallel = 4

// LoadResult is a successfully parsed collection.
type LoadResult struct {
	Source   string
	Header   Header
	Records  []Record
	Duration time.Duration
}

// LoaderConfig configures a Loader. Zero values get defaults.
type LoaderConfig struct {
	Sources     []Source
	Fallback    Source // optional
	Timeout     time.Duration
	MaxParallel int
}

// Loader resolves the collection from candidate sources.
type Loader struct {
	sources     []Source
	fallback    Source
	timeout     time.Duration
	maxParallel int

	group singleflight.Group
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLoadTimeout
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	return &Loader{
		sources:     cfg.Sources,
		fallback:    cfg.Fallback,
		timeout:     cfg.Timeout,
		maxParallel: cfg.MaxParallel,
	}
}

// Sources returns the configured candidates in order.
func (l *Loader) Sources() []Source {
	return l.sources
}

// Load returns the first successfully parsed candidate.
// When nothing succeeds the error is a *LoadError (errors.Is ErrLoadFailed).
//
// The load runs detached from ctx cancellation so that a caller going away
// does not fail other callers sharing the same in-flight load; ctx values
// are kept and the loader's own timeout still applies.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	v, err, shared := l.group.Do("load", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})
	if shared {
		slog.Debug("joined in-flight collection load")
	}
	if err != nil {
		return nil, err
	}
	return v.(*LoadResult), nil
}

func (l *Loader) load(ctx context.Context) (*LoadResult, error) {
	if len(l.sources) == 0 && l.fallback == nil {
		return nil, ErrNoSources
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var (
		mu       sync.Mutex
		winner   *LoadResult
		attempts []Attempt
	)

	g := new(errgroup.Group)
	g.SetLimit(l.maxParallel)

	for _, src := range l.sources {
		if runCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := fetchAndParse(runCtx, src)

			mu.Lock()
			defer mu.Unlock()

			if winner != nil {
				// Someone already committed; late completions are dropped.
				return nil
			}
			if err != nil {
				slog.Debug("collection source failed", "source", src.Name(), "error", err)
				attempts = append(attempts, Attempt{Source: src.Name(), Err: err})
				return nil
			}
			winner = res
			stop()
			return nil
		})
	}
	_ = g.Wait()

	if winner != nil {
		return winner, nil
	}

	if l.fallback != nil && ctx.Err() == nil {
		slog.Warn("all collection sources failed, using fallback",
			"fallback", l.fallback.Name(),
			"attempts", len(attempts),
		)
		res, err := fetchAndParse(ctx, l.fallback)
		if err == nil {
			return res, nil
		}
		attempts = append(attempts, Attempt{Source: l.fallback.Name(), Err: err})
	}

	return nil, &LoadError{Attempts: attempts}
}

// fetchAndParse reads one source and parses it. Zero records is a failure so
// that another candidate gets a chance.
func fetchAndParse(ctx context.Context, src Source) (*LoadResult, error) {
	start := time.Now()

	text, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyFile
	}

	header, records := ParseTable(text)
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	return &LoadResult{
		Source:   src.Name(),
		Header:   header,
		Records:  records,
		Duration: time.Since(start),
	}, nil
}

// IsLoadFailure reports whether err means no collection could be loaded.
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrLoadFailed) || errors.Is(err, ErrNoSources)
}
