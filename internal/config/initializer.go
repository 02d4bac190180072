package config

import (
	"context"

	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/local"
	"github.com/turbolytics/nasr-loader/internal/postgres"
	"github.com/turbolytics/nasr-loader/internal/s3"
)

// InitializeSink connects to nasr_db. Errors wrap postgres.ErrConnection.
func InitializeSink(ctx context.Context, c *Configuration, l *zap.Logger) (*postgres.Sink, error) {
	l.Info("connecting to database",
		zap.String("host", c.NasrDB.Host),
		zap.String("database", c.NasrDB.Database),
		zap.String("schema", c.NasrDB.Schema),
	)

	return postgres.Connect(
		ctx,
		c.NasrDB.ConnectionString(),
		postgres.WithLogger(l),
		postgres.WithSchema(c.NasrDB.Schema),
	)
}

// InitializeSource returns the repository data files are read from.
func InitializeSource(c *Configuration, l *zap.Logger) (internal.Source, error) {
	if !c.IsS3() {
		return local.New(
			c.DataDir,
			local.WithLogger(l),
		), nil
	}

	bucket, prefix, err := s3.ParseURL(c.DataDir)
	if err != nil {
		return nil, &Error{Fields: []string{"data_dir"}, Err: err}
	}

	return s3.New(
		s3.WithLogger(l),
		s3.WithBucket(bucket),
		s3.WithPrefix(prefix),
		s3.WithRegion(c.S3.Region),
		s3.WithEndpoint(c.S3.Endpoint),
		s3.WithForcePathStyle(c.S3.ForcePathStyle),
	)
}
