package loader

import (
	"context"

	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/config"
)

// LoadDictTables appends every dictionary table in order. A table that fails
// is logged and skipped.
func LoadDictTables(ctx context.Context, tables []config.DictTableSettings, sink internal.Sink, l *zap.Logger) {
	for _, t := range tables {
		LoadDictTable(ctx, t, sink, l)
	}
}

// LoadDictTable appends a single dictionary table and reports whether it
// was loaded.
func LoadDictTable(ctx context.Context, t config.DictTableSettings, sink internal.Sink, l *zap.Logger) bool {
	a := startAttempt(l, t.Name)

	n, err := sink.Append(ctx, dictTable(t), 0)
	if err != nil {
		err = &TableLoadError{Table: t.Name, Err: err}
	}
	return a.finish(n, err)
}

// dictTable turns row mappings into a table. Columns are the union of the
// mapping keys in first seen order; a key missing from a row is NULL.
func dictTable(t config.DictTableSettings) *internal.Table {
	var columns []string
	seen := make(map[string]bool)
	for _, row := range t.Data {
		for _, k := range row.Keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	table := internal.NewTable(t.Name, columns)
	for _, row := range t.Data {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = row.Values[c]
		}
		table.Records = append(table.Records, internal.NewRecord(values))
	}
	return table
}
