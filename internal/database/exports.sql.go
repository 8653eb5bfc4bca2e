package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createSchema = `
CREATE TABLE IF NOT EXISTS collection_exports (
    id           UUID PRIMARY KEY,
    file_name    TEXT NOT NULL,
    content      TEXT NOT NULL,
    record_count INTEGER NOT NULL,
    uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS collection_exports_uploaded_at_idx
    ON collection_exports (uploaded_at DESC);
`

// CreateSchema creates the exports table if it does not exist.
func (q *Queries) CreateSchema(ctx context.Context) error {
	_, err := q.db.Exec(ctx, createSchema)
	return err
}

const insertExport = `
INSERT INTO collection_exports (id, file_name, content, record_count, uploaded_at)
VALUES ($1, $2, $3, $4, $5)
`

type InsertExportParams struct {
	ID          pgtype.UUID
	FileName    string
	Content     string
	RecordCount int32
	UploadedAt  pgtype.Timestamptz
}

func (q *Queries) InsertExport(ctx context.Context, arg InsertExportParams) error {
	_, err := q.db.Exec(ctx, insertExport,
		arg.ID,
		arg.FileName,
		arg.Content,
		arg.RecordCount,
		arg.UploadedAt,
	)
	return err
}

const getLatestExport = `
SELECT id, file_name, content, record_count, uploaded_at
FROM collection_exports
ORDER BY uploaded_at DESC
LIMIT 1
`

func (q *Queries) GetLatestExport(ctx context.Context) (CollectionExport, error) {
	row := q.db.QueryRow(ctx, getLatestExport)
	var i CollectionExport
	err := row.Scan(
		&i.ID,
		&i.FileName,
		&i.Content,
		&i.RecordCount,
		&i.UploadedAt,
	)
	return i, err
}

const listExports = `
SELECT id, file_name, '' AS content, record_count, uploaded_at
FROM collection_exports
ORDER BY uploaded_at DESC
LIMIT $1
`

func (q *Queries) ListExports(ctx context.Context, limit int32) ([]CollectionExport, error) {
	rows, err := q.db.Query(ctx, listExports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CollectionExport
	for rows.Next() {
		var i CollectionExport
		if err := rows.Scan(
			&i.ID,
			&i.FileName,
			&i.Content,
			&i.RecordCount,
			&i.UploadedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const pruneExports = `
DELETE FROM collection_exports
WHERE id NOT IN (
    SELECT id FROM collection_exports ORDER BY uploaded_at DESC LIMIT $1
)
`

// PruneExports keeps only the newest keep exports.
func (q *Queries) PruneExports(ctx context.Context, keep int32) (int64, error) {
	tag, err := q.db.Exec(ctx, pruneExports, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteExports = `
DELETE FROM collection_exports
`

// DeleteExports removes every stored export.
func (q *Queries) DeleteExports(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteExports)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
