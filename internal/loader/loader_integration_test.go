package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/local"
	"github.com/turbolytics/nasr-loader/internal/postgres"
	"github.com/turbolytics/nasr-loader/internal/testinfra"
)

func TestIntegrationLoad(t *testing.T) {
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

	sink, err := postgres.Connect(ctx, ctr.ConnString)
	require.NoError(t, err)
	defer sink.Close(ctx)

	count := func(t *testing.T, query string) int {
		var n int
		require.NoError(t, sink.Conn.QueryRow(ctx, query).Scan(&n))
		return n
	}

	l, logs := newObservedLogger()
	c := testConfiguration("AWOS.csv", "FIX_BASE.csv", "LID.csv")
	c.DictTables = append(c.DictTables, config.DictTableSettings{Name: "empty_dict", Data: []config.Row{}})

	require.NoError(t, NewOrchestrator(c, local.New(c.DataDir), sink, l).Run(ctx))

	t.Run("dictionary tables", func(t *testing.T) {
		assert.Equal(t, 1, count(t, `SELECT count(*) FROM state WHERE code = 'AL'`))
		assert.Equal(t, 0, count(t, `SELECT count(*) FROM empty_dict`))
	})

	t.Run("non spatial table", func(t *testing.T) {
		assert.Equal(t, 2, count(t, `SELECT count(*) FROM lid`))
		assert.Equal(t, 1, count(t, `SELECT count(*) FROM lid WHERE loc_id = 'ANB' AND state = 'AL'`))
	})

	t.Run("spatial table", func(t *testing.T) {
		assert.Equal(t, 3, count(t, `SELECT count(*) FROM awos`))
		assert.Equal(t, 2, count(t, `SELECT count(*) FROM awos WHERE ST_SRID(geometry) = 4326 AND GeometryType(geometry) = 'POINT'`))
		assert.Equal(t, 1, count(t, `SELECT count(*) FROM awos WHERE geometry IS NULL`))
		assert.Equal(t, 1, count(t, `SELECT count(*) FROM awos WHERE asos_awos_id = '00M' AND ST_X(geometry) = -89.2347 AND ST_Y(geometry) = 31.9528`))

		assert.Equal(t, 0, count(t, `
			SELECT count(*) FROM information_schema.columns
			WHERE table_name = 'awos' AND column_name IN ('lat_decimal', 'long_decimal')`))
	})

	t.Run("failed table is not created", func(t *testing.T) {
		assert.Equal(t, 0, count(t, `SELECT count(*) FROM information_schema.tables WHERE table_name = 'fix_base'`))
		assert.Equal(t, 1, logs.FilterMessage("table load failed").Len())
	})

	t.Run("second load appends duplicates", func(t *testing.T) {
		loader := NewDataTableLoader(local.New("testdata"), csvSettings, sink)
		s, _ := c.DataTable("LID.csv")
		require.True(t, loader.LoadTable(ctx, s))

		assert.Equal(t, 4, count(t, `SELECT count(*) FROM lid`))
		assert.Equal(t, 2, count(t, `SELECT count(*) FROM lid WHERE loc_id = 'ANB'`))
	})
}
