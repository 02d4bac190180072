package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/csvfile"
)

const (
	LongitudeColumn = "long_decimal"
	LatitudeColumn  = "lat_decimal"
	GeometryColumn  = "geometry"

	// SpatialChunkSize bounds the rows sent per COPY for spatial tables.
	SpatialChunkSize = 10000
)

type Option func(*DataTableLoader)

func WithLogger(l *zap.Logger) Option {
	return func(d *DataTableLoader) {
		d.logger = l
	}
}

// WithChunkSize overrides SpatialChunkSize.
func WithChunkSize(n int) Option {
	return func(d *DataTableLoader) {
		d.chunkSize = n
	}
}

// DataTableLoader loads NASR CSV files into their tables.
type DataTableLoader struct {
	source    internal.Source
	dialect   csvfile.Dialect
	sink      internal.Sink
	logger    *zap.Logger
	chunkSize int
}

func NewDataTableLoader(source internal.Source, settings config.CSVSettings, sink internal.Sink, opts ...Option) *DataTableLoader {
	d := &DataTableLoader{
		source:    source,
		dialect:   settings.Dialect(),
		sink:      sink,
		logger:    zap.NewNop(),
		chunkSize: SpatialChunkSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadTable reads s.FileName and appends it to s.TableName. Any failure is
// logged and swallowed; the return value only reports whether the table was
// loaded.
func (d *DataTableLoader) LoadTable(ctx context.Context, s config.DataFileSettings) bool {
	a := startAttempt(d.logger.With(zap.String("file", s.FileName)), s.TableName)

	n, err := d.load(ctx, s)
	if err != nil {
		err = &TableLoadError{Table: s.TableName, File: s.FileName, Err: err}
	}
	return a.finish(n, err)
}

func (d *DataTableLoader) load(ctx context.Context, s config.DataFileSettings) (int, error) {
	table, err := d.prepare(ctx, s)
	if err != nil {
		return 0, err
	}

	if !s.IsSpatial {
		return d.sink.Append(ctx, table, 0)
	}

	spatial, err := toSpatial(table)
	if err != nil {
		return 0, err
	}
	return d.sink.Append(ctx, spatial, d.chunkSize)
}

// prepare reads the configured columns of the file as trimmed text with
// lowercased column names.
func (d *DataTableLoader) prepare(ctx context.Context, s config.DataFileSettings) (*internal.Table, error) {
	f, err := d.source.Open(ctx, s.FileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := csvfile.NewReader(f, d.dialect)
	if err != nil {
		return nil, err
	}

	table, err := r.ReadTable(s.FileName, s.Columns)
	if err != nil {
		return nil, err
	}
	table.Name = s.TableName
	return table, nil
}

// toSpatial replaces the longitude and latitude columns with a point
// geometry in EPSG:4326. A row missing either coordinate gets a NULL
// geometry.
func toSpatial(t *internal.Table) (*internal.Table, error) {
	lonIdx := t.ColumnIndex(LongitudeColumn)
	latIdx := t.ColumnIndex(LatitudeColumn)
	if lonIdx < 0 || latIdx < 0 {
		return nil, fmt.Errorf("spatial table %s needs %s and %s columns", t.Name, LongitudeColumn, LatitudeColumn)
	}

	points := make([]*geom.Point, t.Len())
	for i, r := range t.Records {
		values := r.Values()
		lon, lonOK, err := coordinate(values[lonIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i+1, LongitudeColumn, err)
		}
		lat, latOK, err := coordinate(values[latIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i+1, LatitudeColumn, err)
		}
		if !lonOK || !latOK {
			continue
		}
		points[i] = geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(internal.SRIDWGS84)
	}

	out := t.DropColumns(LongitudeColumn, LatitudeColumn)
	out.Geometry = &internal.GeometryColumn{
		Name:   GeometryColumn,
		SRID:   internal.SRIDWGS84,
		Points: points,
	}
	return out, nil
}

func coordinate(v any) (float64, bool, error) {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}
