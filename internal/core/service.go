package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UploadTimeout is the maximum duration for reading and committing an upload.
var UploadTimeout = 2 * time.Minute

// Export is a raw collection export kept for later loads.
type Export struct {
	ID         uuid.UUID
	FileName   string
	Content    string
	Records    int
	UploadedAt time.Time
}

// ExportSaver persists uploaded exports. The database package implements it.
type ExportSaver interface {
	SaveExport(ctx context.Context, e Export) error
}

// LoadStatus describes the last load attempt for health and status views.
type LoadStatus struct {
	Loaded   bool      `json:"loaded"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Records  int       `json:"records"`
	Folders  int       `json:"folders"`
	LastErr  string    `json:"last_error,omitempty"`
}

// Service is the entry point both presentation layers use. It owns the
// Store, runs loads through the Loader and keeps the readiness gate.
type Service struct {
	store   *Store
	loader  *Loader
	gate    *Gate
	limiter *UploadLimiter
	exports ExportSaver // nil without a database

	maxUploadSize int64

	mu      sync.Mutex
	lastErr error
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithExportSaver stores every accepted upload.
func WithExportSaver(es ExportSaver) ServiceOption {
	return func(s *Service) { s.exports = es }
}

// WithUploadLimiter replaces the default upload limiter.
func WithUploadLimiter(l *UploadLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithMaxUploadSize bounds uploaded exports.
func WithMaxUploadSize(n int64) ServiceOption {
	return func(s *Service) { s.maxUploadSize = n }
}

// WithGate replaces the default readiness gate (data + view).
func WithGate(g *Gate) ServiceOption {
	return func(s *Service) { s.gate = g }
}

// NewService creates a Service around loader.
func NewService(loader *Loader, opts ...ServiceOption) *Service {
	s := &Service{
		store:         NewStore(),
		loader:        loader,
		gate:          NewGate(ReadyData, ReadyView),
		limiter:       NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime),
		maxUploadSize: DefaultMaxTextSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() *Store { return s.store }

// Gate returns the readiness gate.
func (s *Service) Gate() *Gate { return s.gate }

// Limiter returns the upload limiter.
func (s *Service) Limiter() *UploadLimiter { return s.limiter }

// Load runs the loader and commits the winner. On failure the store keeps
// whatever it held before.
func (s *Service) Load(ctx context.Context) (*LoadResult, error) {
	res, err := s.loader.Load(ctx)
	if err != nil {
		s.setLastErr(err)
		slog.Error("collection load failed", "error", err)
		return nil, err
	}
	s.Commit(res)
	return res, nil
}

// Commit installs a parsed collection and selects every folder in it.
func (s *Service) Commit(res *LoadResult) {
	folders := ExtractFolders(res.Records)
	s.store.Commit(res.Header, res.Records, res.Source, FolderNames(folders))
	s.setLastErr(nil)
	s.gate.Mark(ReadyData)

	slog.Info("collection loaded",
		"source", res.Source,
		"records", len(res.Records),
		"folders", len(folders),
		"duration", res.Duration,
	)
}

// CommitText parses text and commits it. Zero records is ErrNoRecords and
// leaves the store untouched.
func (s *Service) CommitText(source, text string) (*LoadResult, error) {
	start := time.Now()
	header, records := ParseTable(text)
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	res := &LoadResult{
		Source:   source,
		Header:   header,
		Records:  records,
		Duration: time.Since(start),
	}
	s.Commit(res)
	return res, nil
}

// Upload reads an uploaded export, saves it when a database is configured
// and commits it. size may be 0 when unknown.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader, size int64) (*LoadResult, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return nil, fmt.Errorf("upload %q: not a csv file", fileName)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	counter := WrapForStreaming(r, size)
	text, err := ReadText(counter, s.maxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", fileName, err)
	}

	source := "upload:" + fileName
	res, err := s.CommitText(source, text)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", fileName, err)
	}

	slog.Info("collection uploaded",
		"file", fileName,
		"bytes", counter.BytesRead,
		"ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)

	if s.exports != nil {
		exp := Export{
			ID:         uuid.New(),
			FileName:   fileName,
			Content:    text,
			Records:    len(res.Records),
			UploadedAt: time.Now().UTC(),
		}
		if err := s.exports.SaveExport(ctx, exp); err != nil {
			// The upload is live in memory; only persistence failed.
			return res, fmt.Errorf("save export: %w", err)
		}
	}

	return res, nil
}

// Folders returns the folder facet of all loaded records.
func (s *Service) Folders() []FolderCount {
	return ExtractFolders(s.store.Records())
}

// Selection returns a copy of the folder filter.
func (s *Service) Selection() Selection {
	return s.store.Selection()
}

// Visible returns the records passing the folder filter.
func (s *Service) Visible() []Record {
	return VisibleRecords(s.store)
}

// Artists returns the distinct artists among visible records.
func (s *Service) Artists() []string {
	return UniqueArtists(s.Visible())
}

// Albums returns the albums of artist across every loaded record, ignoring
// the folder filter.
func (s *Service) Albums(artist string) []Record {
	return AlbumsForArtist(s.store.Records(), artist)
}

// SetFolderSelected includes or excludes a folder.
func (s *Service) SetFolderSelected(folder string, included bool) bool {
	return s.store.SetFolderSelected(folder, included)
}

// ClearFolders deselects every folder; nothing stays visible.
func (s *Service) ClearFolders() {
	s.store.ClearSelection()
}

// SelectAllFolders re-selects every folder present in the collection.
func (s *Service) SelectAllFolders() {
	s.store.ResetSelection(FolderNames(s.Folders()))
}

// Stats returns counts for the status line.
func (s *Service) Stats() Stats {
	records, sel := s.store.Snapshot()
	visible := FilterRecords(records, &sel)
	return ViewStats(visible, len(records), &sel)
}

// Status reports the current load state.
func (s *Service) Status() LoadStatus {
	source, at := s.store.Source()
	st := LoadStatus{
		Loaded:   !at.IsZero(),
		Source:   source,
		LoadedAt: at,
		Records:  s.store.Len(),
		Folders:  len(s.Folders()),
	}
	s.mu.Lock()
	if s.lastErr != nil {
		st.LastErr = s.lastErr.Error()
	}
	s.mu.Unlock()
	return st
}

func (s *Service) setLastErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
