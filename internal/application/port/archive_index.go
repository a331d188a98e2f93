package port

import (
	"context"
	"time"
)

// ArchiveRecord describes one archived batch of samples.
type ArchiveRecord struct {
	Day         string // partition key, YYYY-MM-DD
	S3Key       string
	URL         string
	SampleCount int
	From        time.Time
	To          time.Time
	SizeBytes   int64
	ArchivedAt  time.Time
	ExpiresAt   time.Time
}

// ArchiveListQuery defines the selection parameters for archive lookups.
type ArchiveListQuery struct {
	Day    string
	Limit  int
	Cursor string
}

// ArchiveListPage holds one result page and the cursor of the next one.
type ArchiveListPage struct {
	Items      []ArchiveRecord
	NextCursor string
}

// ArchiveIndex defines the interface for the archive metadata index.
type ArchiveIndex interface {
	PutBatch(ctx context.Context, records []ArchiveRecord) error
	ListByDay(ctx context.Context, query ArchiveListQuery) (ArchiveListPage, error)
}
