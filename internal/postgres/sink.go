package postgres

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
)

// ErrConnection is returned when the database cannot be reached.
var ErrConnection = errors.New("connection failed")

// Sink appends tables to PostgreSQL using COPY ... FROM STDIN in csv format.
// Every value is sent as text so the server coerces it to the column type.
type Sink struct {
	Conn   *pgx.Conn
	Schema string

	logger *zap.Logger
}

type SinkOption func(*Sink)

func WithSchema(schema string) SinkOption {
	return func(s *Sink) {
		s.Schema = schema
	}
}

func WithLogger(l *zap.Logger) SinkOption {
	return func(s *Sink) {
		s.logger = l
	}
}

func NewSink(conn *pgx.Conn, opts ...SinkOption) *Sink {
	s := Sink{Conn: conn}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return &s
}

// Connect opens a connection and verifies it with a ping.
// Failures wrap ErrConnection.
func Connect(ctx context.Context, connString string, opts ...SinkOption) (*Sink, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return NewSink(conn, opts...), nil
}

func (s *Sink) Close(ctx context.Context) error {
	return s.Conn.Close(ctx)
}

func (s *Sink) identifier(table string) pgx.Identifier {
	parts := strings.Split(table, ".")
	if len(parts) == 1 && s.Schema != "" {
		return pgx.Identifier{s.Schema, table}
	}
	return pgx.Identifier(parts)
}

// Append writes every record of t, creating the table first if it does not
// exist. With chunkSize > 0 records are copied in batches of chunkSize rows;
// a failing batch leaves earlier batches in place.
func (s *Sink) Append(ctx context.Context, t *internal.Table, chunkSize int) (int, error) {
	ident := s.identifier(t.Name)

	if err := s.ensureTable(ctx, ident, t); err != nil {
		return 0, err
	}

	if t.Len() == 0 {
		return 0, nil
	}

	if chunkSize <= 0 {
		chunkSize = t.Len()
	}

	query := copyStatement(ident, t)

	inserted := 0
	for start := 0; start < t.Len(); start += chunkSize {
		end := min(start+chunkSize, t.Len())

		var buf bytes.Buffer
		for i := start; i < end; i++ {
			values, err := rowValues(t, i)
			if err == nil {
				err = writeRow(&buf, values)
			}
			if err != nil {
				return inserted, fmt.Errorf("table %s row %d: %w", t.Name, i, err)
			}
		}

		tag, err := s.Conn.PgConn().CopyFrom(ctx, &buf, query)
		if err != nil {
			return inserted, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
		}
		inserted += int(tag.RowsAffected())

		s.logger.Debug(
			"copied chunk",
			zap.String("table", t.Name),
			zap.Int("start", start),
			zap.Int("end", end),
		)
	}

	return inserted, nil
}

func copyStatement(ident pgx.Identifier, t *internal.Table) string {
	cols := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		cols = append(cols, pgx.Identifier{c}.Sanitize())
	}
	if t.Geometry != nil {
		cols = append(cols, pgx.Identifier{t.Geometry.Name}.Sanitize())
	}
	return fmt.Sprintf(
		"COPY %s (%s) FROM STDIN WITH (FORMAT csv)",
		ident.Sanitize(),
		strings.Join(cols, ", "),
	)
}

// rowValues returns the values of record i followed by its hex encoded
// EWKB geometry, if any.
func rowValues(t *internal.Table, i int) ([]any, error) {
	values := t.Records[i].Values()
	if t.Geometry == nil {
		return values, nil
	}

	out := make([]any, len(values), len(values)+1)
	copy(out, values)

	p := t.Geometry.Points[i]
	if p == nil {
		return append(out, nil), nil
	}
	if p.SRID() == 0 {
		p = p.Clone().SetSRID(t.Geometry.SRID)
	}
	hex, err := ewkbhex.Encode(p, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	return append(out, hex), nil
}

func (s *Sink) ensureTable(ctx context.Context, ident pgx.Identifier, t *internal.Table) error {
	var exists bool
	err := s.Conn.QueryRow(
		ctx,
		"SELECT to_regclass($1) IS NOT NULL",
		ident.Sanitize(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("looking up table %s: %w", ident.Sanitize(), err)
	}
	if exists {
		return nil
	}

	ddl := createTableStatement(ident, t)
	s.logger.Info("creating table", zap.String("table", t.Name), zap.String("ddl", ddl))

	if _, err := s.Conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", ident.Sanitize(), err)
	}
	return nil
}
