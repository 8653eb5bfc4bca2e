package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/recordviewer/internal/config"
	"github.com/JonMunkholm/recordviewer/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KeepExports is how many uploads are retained; older ones are pruned on save.
const KeepExports = 20

// ExportSummary describes a stored export without its content.
type ExportSummary struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	Records    int       `json:"records"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ExportStore saves and loads collection exports.
type ExportStore struct {
	db DBTX
}

// NewExportStore wraps db.
func NewExportStore(db DBTX) *ExportStore {
	return &ExportStore{db: db}
}

// Connect opens a pool from cfg and makes sure the schema exists.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := New(pool).CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return pool, nil
}

// SaveExport implements core.ExportSaver.
func (s *ExportStore) SaveExport(ctx context.Context, e core.Export) error {
	q := New(s.db)

	err := q.InsertExport(ctx, InsertExportParams{
		ID:          pgtype.UUID{Bytes: e.ID, Valid: true},
		FileName:    e.FileName,
		Content:     e.Content,
		RecordCount: int32(e.Records),
		UploadedAt:  pgtype.Timestamptz{Time: e.UploadedAt, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}

	if n, err := q.PruneExports(ctx, KeepExports); err != nil {
		slog.Warn("prune exports failed", "error", err)
	} else if n > 0 {
		slog.Debug("pruned old exports", "deleted", n)
	}
	return nil
}

// Latest returns the most recent export, or core.ErrEmptyFile when none has
// been uploaded.
func (s *ExportStore) Latest(ctx context.Context) (CollectionExport, error) {
	exp, err := New(s.db).GetLatestExport(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return CollectionExport{}, fmt.Errorf("no uploaded export: %w", core.ErrEmptyFile)
	}
	if err != nil {
		return CollectionExport{}, fmt.Errorf("latest export: %w", err)
	}
	return exp, nil
}

// List returns up to limit export summaries, newest first.
func (s *ExportStore) List(ctx context.Context, limit int) ([]ExportSummary, error) {
	rows, err := New(s.db).ListExports(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	out := make([]ExportSummary, len(rows))
	for i, r := range rows {
		out[i] = ExportSummary{
			ID:         uuid.UUID(r.ID.Bytes).String(),
			FileName:   r.FileName,
			Records:    int(r.RecordCount),
			UploadedAt: r.UploadedAt.Time,
		}
	}
	return out, nil
}

// DeleteAll removes every stored export and returns how many were deleted.
func (s *ExportStore) DeleteAll(ctx context.Context) (int64, error) {
	n, err := New(s.db).DeleteExports(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete exports: %w", err)
	}
	return n, nil
}

// ExportSource loads the latest stored export as a collection source.
type ExportSource struct {
	Store *ExportStore
}

// Name implements core.Source.
func (s ExportSource) Name() string { return "db:latest" }

// Fetch implements core.Source.
func (s ExportSource) Fetch(ctx context.Context) (string, error) {
	exp, err := s.Store.Latest(ctx)
	if err != nil {
		return "", err
	}
	return exp.Content, nil
}
