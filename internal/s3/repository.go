package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

type Option func(*Repository)

func WithRegion(region string) Option {
	return func(r *Repository) {
		r.Region = region
	}
}

func WithBucket(bucket string) Option {
	return func(r *Repository) {
		r.Bucket = bucket
	}
}

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.Prefix = prefix
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

func WithForcePathStyle(forcePathStyle bool) Option {
	return func(r *Repository) {
		r.ForcePathStyle = forcePathStyle
	}
}

func WithEndpoint(endpoint string) Option {
	return func(r *Repository) {
		r.Endpoint = endpoint
	}
}

// WithDownloader replaces the s3manager downloader, mostly for tests.
func WithDownloader(d Downloader) Option {
	return func(r *Repository) {
		r.downloader = d
	}
}

// Downloader is the subset of s3manager.Downloader used by Repository.
type Downloader interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *awss3.GetObjectInput, options ...func(*s3manager.Downloader)) (int64, error)
}

// Repository reads data files from an S3 bucket. Objects are downloaded
// fully into memory before they are handed to the caller.
type Repository struct {
	logger     *zap.Logger
	downloader Downloader

	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	ForcePathStyle bool
}

// ParseURL splits s3://bucket/prefix into its bucket and prefix.
func ParseURL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 url %q", raw)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

func New(opts ...Option) (*Repository, error) {
	r := &Repository{
		logger: zap.NewNop(),
	}

	for _, o := range opts {
		o(r)
	}

	if r.downloader != nil {
		return r, nil
	}

	awsConfig := &aws.Config{
		S3ForcePathStyle: aws.Bool(r.ForcePathStyle),
	}
	if r.Region != "" {
		awsConfig.Region = aws.String(r.Region)
	}
	if r.Endpoint != "" {
		awsConfig.Endpoint = aws.String(r.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	r.downloader = s3manager.NewDownloader(sess)

	return r, nil
}

func (r *Repository) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(r.Prefix, name)

	r.logger.Debug(
		"S3 download",
		zap.String("bucket", r.Bucket),
		zap.String("key", key),
	)

	buf := aws.NewWriteAtBuffer(nil)
	_, err := r.downloader.DownloadWithContext(ctx, buf, &awss3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", r.Bucket, key, err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}
