package database

import "github.com/jackc/pgx/v5/pgtype"

// CollectionExport is one row of collection_exports.
type CollectionExport struct {
	ID          pgtype.UUID
	FileName    string
	Content     string
	RecordCount int32
	UploadedAt  pgtype.Timestamptz
}
