package internal

import (
	"fmt"

	"github.com/twpayne/go-geom"
)

// SRIDWGS84 is the spatial reference id of EPSG:4326.
const SRIDWGS84 = 4326

// Table is an in-memory batch of records for a single destination table.
type Table struct {
	Name    string
	Columns []string
	Records []*Record

	// Geometry is set for spatial tables only.
	Geometry *GeometryColumn
}

// GeometryColumn holds one point per record. A nil point is written as NULL.
type GeometryColumn struct {
	Name   string
	SRID   int
	Points []*geom.Point
}

func NewTable(name string, columns []string) *Table {
	return &Table{
		Name:    name,
		Columns: columns,
	}
}

func (t *Table) Len() int {
	return len(t.Records)
}

// Append adds a row. values must line up with Columns.
func (t *Table) Append(values []any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf(
			"table %s: record has %d values, expected %d",
			t.Name,
			len(values),
			len(t.Columns),
		)
	}
	t.Records = append(t.Records, NewRecord(values))
	return nil
}

// ColumnIndex returns the position of column or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// DropColumns returns a copy of t without the named columns.
func (t *Table) DropColumns(columns ...string) *Table {
	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		drop[c] = true
	}

	var keep []int
	var kept []string
	for i, c := range t.Columns {
		if drop[c] {
			continue
		}
		keep = append(keep, i)
		kept = append(kept, c)
	}

	out := NewTable(t.Name, kept)
	out.Geometry = t.Geometry
	for _, r := range t.Records {
		values := make([]any, len(keep))
		for j, i := range keep {
			values[j] = r.values[i]
		}
		out.Records = append(out.Records, NewRecord(values))
	}
	return out
}
