package postgres

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cast"

	"github.com/turbolytics/nasr-loader/internal"
)

// writeRow encodes values as one line of PostgreSQL csv COPY input.
// nil is written as an unquoted empty field (NULL); every other value is
// quoted, so an empty string stays an empty string.
func writeRow(buf *bytes.Buffer, values []any) error {
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		if v == nil {
			continue
		}
		s, err := text(v)
		if err != nil {
			return err
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(s, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
	return nil
}

func text(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("unsupported value %v (%T)", v, v)
	}
	return s, nil
}

func createTableStatement(ident pgx.Identifier, t *internal.Table) string {
	defs := make([]string, 0, len(t.Columns)+1)
	for i, c := range t.Columns {
		defs = append(defs, pgx.Identifier{c}.Sanitize()+" "+columnType(t, i))
	}
	if t.Geometry != nil {
		defs = append(defs, fmt.Sprintf(
			"%s geometry(Point, %d)",
			pgx.Identifier{t.Geometry.Name}.Sanitize(),
			t.Geometry.SRID,
		))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		ident.Sanitize(),
		strings.Join(defs, ", "),
	)
}

// columnType infers a column type from the non-nil values of column i.
// Mixed integers and floats widen to double precision; any other mix is text.
func columnType(t *internal.Table, i int) string {
	kind := ""
	for _, r := range t.Records {
		k := valueType(r.Values()[i])
		switch {
		case k == "":
			continue
		case kind == "":
			kind = k
		case kind == k:
		case numeric(kind) && numeric(k):
			kind = "double precision"
		default:
			return "text"
		}
	}
	if kind == "" {
		return "text"
	}
	return kind
}

func numeric(kind string) bool {
	return kind == "bigint" || kind == "double precision"
}

func valueType(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "bigint"
	case float32, float64:
		return "double precision"
	case time.Time:
		return "timestamp with time zone"
	default:
		return "text"
	}
}
