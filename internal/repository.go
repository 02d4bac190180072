package internal

import (
	"context"
	"io"
)

// Source opens named data files, e.g. NASR CSV files under a data directory.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Sink appends tables to a database. Appends are never upserts.
// chunkSize <= 0 writes all records in a single batch.
type Sink interface {
	Append(ctx context.Context, t *Table, chunkSize int) (int, error)
}
