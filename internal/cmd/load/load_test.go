package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/config"
	"github.com/turbolytics/nasr-loader/internal/logging"
	"github.com/turbolytics/nasr-loader/internal/postgres"
)

type fakeSink struct {
	tables []string
	rows   int
	closed bool
}

func (f *fakeSink) Append(ctx context.Context, t *internal.Table, chunkSize int) (int, error) {
	f.tables = append(f.tables, t.Name)
	f.rows += t.Len()
	return t.Len(), nil
}

func (f *fakeSink) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeConnector struct {
	sink   *fakeSink
	err    error
	calls  int
	config *config.Configuration
}

func (f *fakeConnector) connect(ctx context.Context, c *config.Configuration, l *zap.Logger) (sink, error) {
	f.calls++
	f.config = c
	if f.err != nil {
		return nil, f.err
	}
	return f.sink, nil
}

func run(t *testing.T, conn *fakeConnector, args ...string) (string, error) {
	t.Helper()
	logDir := t.TempDir()

	cmd := newCommand(conn.connect)
	cmd.SetArgs(append(args, "--log-dir", logDir))
	err := cmd.Execute()

	bs, readErr := os.ReadFile(filepath.Join(logDir, logging.FileName))
	require.NoError(t, readErr)
	return string(bs), err
}

func TestLoadCommand(t *testing.T) {
	t.Run("loads dictionary tables then data files", func(t *testing.T) {
		conn := &fakeConnector{sink: &fakeSink{}}

		logs, err := run(t, conn, "-c", "testdata/config.yml")
		require.NoError(t, err)

		assert.Equal(t, 1, conn.calls)
		assert.Equal(t, []string{"state", "lid"}, conn.sink.tables)
		assert.Equal(t, 3, conn.sink.rows)
		assert.True(t, conn.sink.closed)

		assert.Contains(t, logs, "run_id")
		assert.Contains(t, logs, "rows inserted")
		// fix_base is missing a configured column; the run still succeeds
		assert.Contains(t, logs, "table load failed")
	})

	t.Run("malformed config fails before connecting", func(t *testing.T) {
		conn := &fakeConnector{sink: &fakeSink{}}

		logs, err := run(t, conn, "-c", "testdata/malformed.yml")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "nasr_db.password")
		assert.Equal(t, 0, conn.calls)
		assert.Contains(t, logs, "loading config")
	})

	t.Run("missing config file", func(t *testing.T) {
		conn := &fakeConnector{sink: &fakeSink{}}

		_, err := run(t, conn, "-c", "testdata/nope.yml")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Equal(t, 0, conn.calls)
	})

	t.Run("load order naming an unknown file fails before connecting", func(t *testing.T) {
		conn := &fakeConnector{sink: &fakeSink{}}

		_, err := run(t, conn, "-c", "testdata/missing_file.yml")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Equal(t, 0, conn.calls)
	})

	t.Run("connection failure", func(t *testing.T) {
		conn := &fakeConnector{err: postgres.ErrConnection}

		_, err := run(t, conn, "-c", "testdata/config.yml")
		assert.ErrorIs(t, err, postgres.ErrConnection)
		assert.Equal(t, 1, conn.calls)
	})

	t.Run("log rotation size", func(t *testing.T) {
		conn := &fakeConnector{sink: &fakeSink{}}

		logs, err := run(t, conn, "-c", "testdata/config.yml", "--log-max-size", "1")
		require.NoError(t, err)
		assert.Contains(t, logs, "rows inserted")
	})

	t.Run("password from the environment", func(t *testing.T) {
		t.Setenv("NASR_DB_PASSWORD", "from-env")
		conn := &fakeConnector{sink: &fakeSink{}}

		_, err := run(t, conn, "-c", "testdata/malformed.yml")
		require.NoError(t, err)
		assert.Equal(t, "from-env", conn.config.NasrDB.Password)
	})
}
