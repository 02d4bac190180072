package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/testinfra"
)

func TestIntegrationSink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	ctr, err := testinfra.StartPostGIS(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	sink, err := Connect(ctx, ctr.ConnString)
	require.NoError(t, err)
	defer sink.Close(ctx)

	t.Run("creates missing table and appends", func(t *testing.T) {
		table := internal.NewTable("state", []string{"code", "name", "rank"})
		require.NoError(t, table.Append([]any{"AK", "Alaska", 1}))
		require.NoError(t, table.Append([]any{"AL", nil, 2}))

		n, err := sink.Append(ctx, table, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		var count, rankSum int
		err = sink.Conn.QueryRow(ctx, `SELECT count(*), sum(rank) FROM state WHERE name IS NOT NULL OR code = 'AL'`).Scan(&count, &rankSum)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, 3, rankSum)
	})

	t.Run("coerces text into existing typed columns", func(t *testing.T) {
		_, err := sink.Conn.Exec(ctx, `CREATE TABLE rdr (facility_id text, elev integer)`)
		require.NoError(t, err)

		table := internal.NewTable("rdr", []string{"facility_id", "elev"})
		require.NoError(t, table.Append([]any{"ABC", "120"}))

		n, err := sink.Append(ctx, table, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		var elev int
		require.NoError(t, sink.Conn.QueryRow(ctx, `SELECT elev FROM rdr`).Scan(&elev))
		assert.Equal(t, 120, elev)

		bad := internal.NewTable("rdr", []string{"facility_id", "elev"})
		require.NoError(t, bad.Append([]any{"XYZ", "not a number"}))
		_, err = sink.Append(ctx, bad, 0)
		assert.Error(t, err)
	})

	t.Run("spatial chunks", func(t *testing.T) {
		table := internal.NewTable("awos", []string{"asos_awos_id"})
		table.Geometry = &internal.GeometryColumn{Name: "geometry", SRID: internal.SRIDWGS84}
		for i, c := range [][]float64{{-89.2347, 31.9528}, {-85.8581, 33.5882}, {-70.0, 42.0}} {
			require.NoError(t, table.Append([]any{string(rune('A' + i))}))
			table.Geometry.Points = append(table.Geometry.Points,
				geom.NewPointFlat(geom.XY, c).SetSRID(internal.SRIDWGS84))
		}

		n, err := sink.Append(ctx, table, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		var x, y float64
		var srid int
		err = sink.Conn.QueryRow(ctx,
			`SELECT ST_X(geometry), ST_Y(geometry), ST_SRID(geometry) FROM awos WHERE asos_awos_id = 'A'`,
		).Scan(&x, &y, &srid)
		require.NoError(t, err)
		assert.InDelta(t, -89.2347, x, 1e-9)
		assert.InDelta(t, 31.9528, y, 1e-9)
		assert.Equal(t, 4326, srid)
	})

	t.Run("empty table", func(t *testing.T) {
		table := internal.NewTable("wxl_svc", []string{"wea_id"})
		n, err := sink.Append(ctx, table, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://nobody:x@127.0.0.1:1/none?connect_timeout=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
}
